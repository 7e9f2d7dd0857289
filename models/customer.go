package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vehicle pipeline statuses. The store accepts any of them at any time;
// ordering is an admin-side convention, not a constraint.
const (
	StatusPending   = "pending"
	StatusInTransit = "in_transit"
	StatusArrived   = "arrived"
	StatusSold      = "sold"
)

// ImageCategories are the six pipeline stages photo evidence is grouped by.
// The upload route only accepts these as its category parameter.
var ImageCategories = []string{
	"auction",
	"americanDepot",
	"containerLoading",
	"containerUnloading",
	"bakuRoad",
	"bakuCustoms",
}

func ValidImageCategory(category string) bool {
	for _, c := range ImageCategories {
		if c == category {
			return true
		}
	}
	return false
}

type TrackingLinks struct {
	Carrier string `json:"carrier"`
	Ship    string `json:"ship"`
}

type CarInfo struct {
	Year            int           `json:"year"`
	Make            string        `json:"make"`
	Model           string        `json:"model"`
	Vin             string        `json:"vin" gorm:"uniqueIndex"`
	ContainerNumber string        `json:"containerNumber"`
	PortOfLoading   string        `json:"portOfLoading"`
	LoadingDate     *time.Time    `json:"loadingDate"`
	OpeningDate     *time.Time    `json:"openingDate"`
	SaleDate        *time.Time    `json:"saleDate"`
	TrackingLinks   TrackingLinks `json:"trackingLinks" gorm:"embedded;embeddedPrefix:tracking_"`
	Status          string        `json:"status" gorm:"default:pending"`
}

// ImageSet holds the per-category image URL lists, stored as one JSONB
// document the way the original record keeps them nested.
type ImageSet struct {
	Auction            []string `json:"auction"`
	AmericanDepot      []string `json:"americanDepot"`
	ContainerLoading   []string `json:"containerLoading"`
	ContainerUnloading []string `json:"containerUnloading"`
	BakuRoad           []string `json:"bakuRoad"`
	BakuCustoms        []string `json:"bakuCustoms"`
}

// All returns every stored URL across categories (used for asset cleanup).
func (s ImageSet) All() []string {
	var urls []string
	urls = append(urls, s.Auction...)
	urls = append(urls, s.AmericanDepot...)
	urls = append(urls, s.ContainerLoading...)
	urls = append(urls, s.ContainerUnloading...)
	urls = append(urls, s.BakuRoad...)
	urls = append(urls, s.BakuCustoms...)
	return urls
}

// Append adds URLs to the named category list, preserving order.
func (s *ImageSet) Append(category string, urls []string) {
	switch category {
	case "auction":
		s.Auction = append(s.Auction, urls...)
	case "americanDepot":
		s.AmericanDepot = append(s.AmericanDepot, urls...)
	case "containerLoading":
		s.ContainerLoading = append(s.ContainerLoading, urls...)
	case "containerUnloading":
		s.ContainerUnloading = append(s.ContainerUnloading, urls...)
	case "bakuRoad":
		s.BakuRoad = append(s.BakuRoad, urls...)
	case "bakuCustoms":
		s.BakuCustoms = append(s.BakuCustoms, urls...)
	}
}

type Customer struct {
	Id string `json:"id" gorm:"primaryKey"`

	// Human-readable tracking code the public app searches by.
	CustomerId string `json:"customerId" gorm:"uniqueIndex;not null"`

	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"unique;not null"`
	Phone   string `json:"phone" gorm:"not null"`
	Address string `json:"address" gorm:"not null"`

	Car    CarInfo                      `json:"car" gorm:"embedded;embeddedPrefix:car_"`
	Images datatypes.JSONType[ImageSet] `json:"images" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (customer *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if customer.Id == "" {
		customer.Id = uuid.NewString()
	}
	return
}
