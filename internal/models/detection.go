package models

import (
	"time"

	"github.com/sahabattani/backend/internal/disease"
	"gorm.io/datatypes"
)

type DetectionStatus string

const (
	StatusProcessing DetectionStatus = "processing"
	StatusCompleted  DetectionStatus = "completed"
	StatusFailed     DetectionStatus = "failed"
)

var PlantTypes = []string{
	"tomato", "potato", "corn", "rice", "wheat", "soybean",
	"apple", "grape", "citrus", "strawberry", "pepper", "other",
}

type Detection struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"not null;index" json:"userId"`
	User   *User `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	OriginalFileName string `gorm:"size:255" json:"originalFileName"`
	ImagePath        string `gorm:"size:500" json:"imagePath"`
	ImageSize        int64  `json:"imageSize"`

	Prediction  string          `gorm:"size:100;not null" json:"prediction"`
	DiseaseKey  string          `gorm:"size:100;index" json:"diseaseKey"`
	Confidence  float64         `gorm:"not null" json:"confidence"`
	PlantType   string          `gorm:"size:20;default:rice;index" json:"plantType"`
	Severity    string          `gorm:"size:20" json:"severity"`
	Description string          `gorm:"type:text" json:"description"`
	Status      DetectionStatus `gorm:"size:20;default:completed" json:"status"`

	Symptoms   datatypes.JSONType[[]string]            `json:"symptoms"`
	Causes     datatypes.JSONType[[]string]            `json:"causes"`
	Treatments datatypes.JSONType[[]disease.Treatment] `json:"treatments"`
	Prevention datatypes.JSONType[[]string]            `json:"prevention"`
	Tags       datatypes.JSONType[[]string]            `json:"tags"`

	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	LocationAddress string   `gorm:"size:255" json:"locationAddress,omitempty"`
	LocationRegion  string   `gorm:"size:100" json:"locationRegion,omitempty"`
	LocationCountry string   `gorm:"size:100" json:"locationCountry,omitempty"`

	WeatherTemperature *float64 `json:"weatherTemperature"`
	WeatherHumidity    *float64 `json:"weatherHumidity"`
	WeatherConditions  string   `gorm:"size:100" json:"weatherConditions,omitempty"`

	Notes          string `gorm:"size:500" json:"notes"`
	IsPublic       bool   `gorm:"default:false;index" json:"isPublic"`
	ProcessingTime int64  `json:"processingTime"`
	ModelVersion   string `gorm:"size:20;default:1.0" json:"modelVersion"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Detection) OwnedBy(userID uint) bool {
	return d.UserID == userID
}
