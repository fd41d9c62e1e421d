package handler

import (
	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// errorResponse mirrors the envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

// ── Auth ──────────────────────────────────────────────────────────────────────

type registerRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,password"`
	RealName string `json:"realName,omitempty" validate:"omitempty,max=64"`
	Phone    string `json:"phone" validate:"required,phone"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type checkUsernameQuery struct {
	Username string `query:"username"`
}

// ── User ──────────────────────────────────────────────────────────────────────

type updateProfileRequest struct {
	RealName *string `json:"realName,omitempty" validate:"omitempty,max=64"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Intro    *string `json:"intro,omitempty" validate:"omitempty,max=500"`
}

func (r updateProfileRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{RealName: r.RealName, Phone: r.Phone, Intro: r.Intro}
}

// ── Needs ─────────────────────────────────────────────────────────────────────

type createNeedRequest struct {
	Region      string   `json:"region" validate:"required,max=64"`
	ServiceType string   `json:"serviceType" validate:"required,servicetype"`
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	ImgURLs     []string `json:"imgUrls,omitempty" validate:"max=9"`
	VideoURL    string   `json:"videoUrl,omitempty" validate:"omitempty,url"`
}

func (r createNeedRequest) toDomain() domain.NewNeed {
	return domain.NewNeed{
		Region:      r.Region,
		ServiceType: r.ServiceType,
		Title:       r.Title,
		Description: r.Description,
		ImgURLs:     r.ImgURLs,
		VideoURL:    r.VideoURL,
	}
}

type updateNeedRequest struct {
	Region      *string   `json:"region,omitempty" validate:"omitempty,max=64"`
	ServiceType *string   `json:"serviceType,omitempty" validate:"omitempty,servicetype"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImgURLs     *[]string `json:"imgUrls,omitempty" validate:"omitempty,max=9"`
	VideoURL    *string   `json:"videoUrl,omitempty" validate:"omitempty,url"`
}

func (r updateNeedRequest) toPatch() domain.NeedPatch {
	return domain.NeedPatch{
		Region:      r.Region,
		ServiceType: r.ServiceType,
		Title:       r.Title,
		Description: r.Description,
		ImgURLs:     r.ImgURLs,
		VideoURL:    r.VideoURL,
	}
}

type needListQuery struct {
	Keyword     string `query:"keyword"`
	ServiceType string `query:"serviceType" validate:"omitempty,servicetype"`
	Region      string `query:"region"`
	Status      string `query:"status" validate:"omitempty,oneof=open closed"`
	Page        int    `query:"page" validate:"gte=0"`
	Size        int    `query:"size" validate:"gte=0,lte=100"`
}

func (q needListQuery) toFilter() ports.NeedFilter {
	return ports.NeedFilter{
		Keyword:     q.Keyword,
		ServiceType: q.ServiceType,
		Region:      q.Region,
		Status:      domain.NeedStatus(q.Status),
		Page:        q.Page,
		Size:        q.Size,
	}
}

type needPageResponse struct {
	Records []*domain.Need `json:"records"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
}

func toNeedPage(p *ports.NeedPage) needPageResponse {
	records := p.Records
	if records == nil {
		records = []*domain.Need{}
	}
	return needPageResponse{Records: records, Total: p.Total, Page: p.Page, Size: p.Size}
}

// ── Service offers ────────────────────────────────────────────────────────────

type createOfferRequest struct {
	NeedID      string `json:"needId" validate:"required"`
	ServiceType string `json:"serviceType" validate:"required,servicetype"`
	Title       string `json:"title" validate:"required,max=100"`
	Content     string `json:"content" validate:"required,max=2000"`
}

func (r createOfferRequest) toDomain() domain.NewServiceOffer {
	return domain.NewServiceOffer{
		NeedID:      r.NeedID,
		ServiceType: r.ServiceType,
		Title:       r.Title,
		Content:     r.Content,
	}
}

type updateOfferRequest struct {
	ServiceType *string `json:"serviceType,omitempty" validate:"omitempty,servicetype"`
	Title       *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Content     *string `json:"content,omitempty" validate:"omitempty,max=2000"`
}

func (r updateOfferRequest) toPatch() domain.ServiceOfferPatch {
	return domain.ServiceOfferPatch{ServiceType: r.ServiceType, Title: r.Title, Content: r.Content}
}

type offerListQuery struct {
	NeedID      string `query:"needId"`
	Keyword     string `query:"keyword"`
	ServiceType string `query:"serviceType" validate:"omitempty,servicetype"`
	Status      string `query:"status" validate:"omitempty,oneof=pending accepted rejected"`
	Page        int    `query:"page" validate:"gte=0"`
	Size        int    `query:"size" validate:"gte=0,lte=100"`
}

func (q offerListQuery) toFilter() ports.OfferFilter {
	return ports.OfferFilter{
		NeedID:      q.NeedID,
		Keyword:     q.Keyword,
		ServiceType: q.ServiceType,
		Status:      domain.OfferStatus(q.Status),
		Page:        q.Page,
		Size:        q.Size,
	}
}

type offerPageResponse struct {
	Records []*domain.ServiceOffer `json:"records"`
	Total   int                    `json:"total"`
	Page    int                    `json:"page"`
	Size    int                    `json:"size"`
}

func toOfferPage(p *ports.OfferPage) offerPageResponse {
	records := p.Records
	if records == nil {
		records = []*domain.ServiceOffer{}
	}
	return offerPageResponse{Records: records, Total: p.Total, Page: p.Page, Size: p.Size}
}

// ── Admin / navigation ────────────────────────────────────────────────────────

type statsQuery struct {
	StartMonth    string `query:"startMonth" validate:"omitempty,datetime=2006-01"`
	EndMonth      string `query:"endMonth" validate:"omitempty,datetime=2006-01"`
	RegionKeyword string `query:"region"`
}

type routeGuardQuery struct {
	To   string `query:"to" validate:"required"`
	From string `query:"from"`
}
