package domain

import "time"

// NeedStatus represents the lifecycle state of a need.
type NeedStatus string

const (
	NeedOpen   NeedStatus = "open"
	NeedClosed NeedStatus = "closed"
)

// Service categories a need or offer can belong to.
const (
	ServiceHomeRepair    = "home_repair"
	ServiceDailyCare     = "daily_care"
	ServiceCleaning      = "cleaning"
	ServiceMedicalEscort = "medical_escort"
	ServiceMeal          = "meal_service"
	ServiceOther         = "other"
)

// ServiceTypes lists every accepted service category.
var ServiceTypes = []string{
	ServiceHomeRepair,
	ServiceDailyCare,
	ServiceCleaning,
	ServiceMedicalEscort,
	ServiceMeal,
	ServiceOther,
}

// ValidServiceType reports whether s is a known service category.
func ValidServiceType(s string) bool {
	for _, t := range ServiceTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Need is a service request posted by a household user.
type Need struct {
	NeedID      string     `json:"needId"`
	UserID      string     `json:"userId"`
	Region      string     `json:"region"`
	ServiceType string     `json:"serviceType"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImgURLs     []string   `json:"imgUrls"`
	VideoURL    string     `json:"videoUrl,omitempty"`
	CreateTime  time.Time  `json:"createTime"`
	UpdateTime  time.Time  `json:"updateTime"`
	Status      NeedStatus `json:"status"`
	HasResponse bool       `json:"hasResponse"`
}

// Mutable reports whether the need may still be edited or deleted.
func (n *Need) Mutable() bool {
	return !n.HasResponse
}

// Clone returns a deep copy of the need.
func (n *Need) Clone() *Need {
	c := *n
	c.ImgURLs = append([]string(nil), n.ImgURLs...)
	return &c
}

// NewNeed carries the caller-supplied fields of a need.
type NewNeed struct {
	Region      string
	ServiceType string
	Title       string
	Description string
	ImgURLs     []string
	VideoURL    string
}

// NeedPatch enumerates the need fields that may be updated. Nil fields are
// left untouched.
type NeedPatch struct {
	Region      *string
	ServiceType *string
	Title       *string
	Description *string
	ImgURLs     *[]string
	VideoURL    *string
}

// Apply copies the non-nil patch fields onto n.
func (p NeedPatch) Apply(n *Need) {
	if p.Region != nil {
		n.Region = *p.Region
	}
	if p.ServiceType != nil {
		n.ServiceType = *p.ServiceType
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.ImgURLs != nil {
		n.ImgURLs = append([]string(nil), (*p.ImgURLs)...)
	}
	if p.VideoURL != nil {
		n.VideoURL = *p.VideoURL
	}
}
