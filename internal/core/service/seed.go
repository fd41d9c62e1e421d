package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/haofuwu/service-market/internal/core/domain"
)

// Demo data written on first start when seeding is enabled.

type demoAccount struct {
	id, username, password, realName, phone, intro string
	userType                                       domain.UserType
	registered                                     time.Time
}

var demoAccounts = []demoAccount{
	{"1", "admin", "Ww123456", "Administrator", "13800138000", "System administrator account", domain.UserTypeAdmin, day(2025, 1, 1)},
	{"2", "putong", "Aa123456", "Zhou Shen", "13900139000", "How did you know I'm a fan?", domain.UserTypeRegular, day(2025, 1, 2)},
	{"3", "koudaili", "Bb123456", "Not telling", "13700137000", "Please just let me pass", domain.UserTypeRegular, day(2025, 1, 3)},
}

var regionPool = []string{
	"Beijing Chaoyang", "Beijing Haidian", "Shanghai Pudong", "Shanghai Jing'an",
	"Guangzhou Tianhe", "Guangzhou Yuexiu", "Shenzhen Nanshan", "Shenzhen Futian",
	"Hangzhou Xihu", "Hangzhou Binjiang", "Chengdu Jinjiang", "Chengdu Wuhou",
}

var demoDescriptions = map[string][]string{
	domain.ServiceHomeRepair: {
		"Water pipe leaking badly, need an on-site repair this afternoon",
		"Breaker trips repeatedly, wiring may be old, need an electrician",
		"Toilet is clogged, urgent unblocking, bring your own tools",
		"Window hinges rusted, need replacement and lubrication",
		"Water heater gives no hot water, check the heating element",
		"Air conditioner cools poorly, clean the filter and recharge",
		"Range hood full of grease, deep clean including the fan",
		"Gas stove will not ignite, check battery and valve",
		"Radiator leaking, patch and bleed it before winter",
		"Wardrobe hinge loose, door sagging, adjust and reinforce",
	},
	domain.ServiceCleaning: {
		"Whole-home deep clean, kitchen, bathroom and bedrooms",
		"Kitchen grease removal, stove, hood and cabinet interiors",
		"Bathroom tile grout mouldy, remove and disinfect",
		"Clean all windows including balcony doors, no streaks",
		"Wax the wooden floor, clean first, about 100 square metres",
		"Take down, wash and rehang four linen curtains",
		"Sofa and carpet stains, professional wash and deodorise",
		"Fridge interior deodorise and clean, freezer included",
		"Remove and wash three air conditioner filters",
		"Balcony clutter, sort items and dispose of some",
		"Post-renovation clean, dust and adhesive residue",
	},
	domain.ServiceDailyCare: {
		"Daily companion for an 80-year-old, shopping, cooking, chatting",
		"Prepare light meals for an elderly person who cannot cook",
		"Help a post-surgery patient bathe and dress, experience required",
		"Daily two-hour visit to keep a lonely elder company",
		"Drive an elder to hospital check-ups three times a week",
		"Assist rehab exercises after surgery, nursing certificate required",
		"Pick up chronic medication with prescription at a set pharmacy",
		"Tidy the home twice a month, sweeping and folding clothes",
		"Remind an elder to take medicine daily, phone call plus visit",
		"Look after a cat for an hour a day, feeding and litter",
		"Stroke rehab sessions five times a week, therapist required",
	},
}

const demoImgURL = "https://picsum.photos/400/300?random="
const demoVideoURL = "https://example.com/video/"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func demoUsers(cost int) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(demoAccounts))
	for _, a := range demoAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash demo password: %w", err)
		}
		users = append(users, &domain.User{
			UserID:       a.id,
			Username:     a.username,
			PasswordHash: string(hash),
			UserType:     a.userType,
			RealName:     a.realName,
			Phone:        a.phone,
			Intro:        a.intro,
			RegisterTime: a.registered,
			UpdateTime:   a.registered,
		})
	}
	return users, nil
}

func demoNeeds() []*domain.Need {
	batches := []struct {
		serviceType string
		owner       string
		created     time.Time
		closedEvery int
		respEvery   int
	}{
		{domain.ServiceHomeRepair, "1", day(2025, 9, 1), 4, 2},
		{domain.ServiceCleaning, "2", day(2025, 9, 2), 5, 3},
		{domain.ServiceDailyCare, "3", day(2025, 9, 3), 6, 4},
	}

	var needs []*domain.Need
	id := 1
	for _, b := range batches {
		for i, desc := range demoDescriptions[b.serviceType] {
			title, _, _ := strings.Cut(desc, ",")
			n := &domain.Need{
				NeedID:      fmt.Sprintf("%s%d", needIDPrefix, id),
				UserID:      b.owner,
				Region:      regionPool[(id-1)%len(regionPool)],
				ServiceType: b.serviceType,
				Title:       title,
				Description: desc,
				ImgURLs:     []string{fmt.Sprintf("%s%d", demoImgURL, id), fmt.Sprintf("%s%d", demoImgURL, id+100)},
				CreateTime:  b.created,
				UpdateTime:  b.created,
				Status:      domain.NeedOpen,
				HasResponse: i%b.respEvery == 0,
			}
			if i%3 == 0 {
				n.VideoURL = fmt.Sprintf("%s%d", demoVideoURL, id)
			}
			if i%b.closedEvery == 0 {
				n.Status = domain.NeedClosed
			}
			needs = append(needs, n)
			id++
		}
	}
	return needs
}

func demoOffers() []*domain.ServiceOffer {
	at := func(d, h, m, s int) time.Time { return time.Date(2025, 9, d, h, m, s, 0, time.UTC) }
	return []*domain.ServiceOffer{
		{
			ServiceID: "service_1", NeedID: "need_1", UserID: "2",
			ServiceType: domain.ServiceHomeRepair,
			Title:       "Pipe repair offer",
			Content:     "Five years of plumbing experience, leaks and blockages, quick response",
			CreateTime:  at(1, 10, 20, 30), UpdateTime: at(1, 10, 20, 30),
			Status: domain.OfferPending,
		},
		{
			ServiceID: "service_2", NeedID: "need_22", UserID: "2",
			ServiceType: domain.ServiceDailyCare,
			Title:       "Home companion care",
			Content:     "Experienced with elders living alone: shopping, cooking, company and basic care",
			CreateTime:  at(5, 14, 15, 20), UpdateTime: at(5, 14, 15, 20),
			Status: domain.OfferAccepted,
		},
		{
			ServiceID: "service_3", NeedID: "need_11", UserID: "3",
			ServiceType: domain.ServiceCleaning,
			Title:       "Post-renovation cleaning",
			Content:     "Professional team with own tools, renovation residue and glass cleaning",
			CreateTime:  at(10, 9, 30, 15), UpdateTime: at(10, 9, 30, 15),
			Status: domain.OfferPending,
		},
	}
}
