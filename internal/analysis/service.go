package analysis

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/disease"
	"github.com/sahabattani/backend/internal/middleware"
	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxNotesLength = 500

// CreateInput is a classification result the client wants to keep. Descriptive
// fields left empty are filled from the knowledge base entry of Prediction.
type CreateInput struct {
	Prediction       string   `json:"prediction"`
	Confidence       *float64 `json:"confidence"`
	OriginalFileName string   `json:"originalFileName"`
	ImagePath        string   `json:"imagePath"`
	ImageSize        int64    `json:"imageSize"`
	PlantType        string   `json:"plantType"`
	Status           string   `json:"status"`

	Severity    string              `json:"severity"`
	Description string              `json:"description"`
	Symptoms    []string            `json:"symptoms"`
	Causes      []string            `json:"causes"`
	Treatments  []disease.Treatment `json:"treatments"`
	Prevention  []string            `json:"prevention"`
	Tags        []string            `json:"tags"`

	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	LocationAddress string   `json:"locationAddress"`
	LocationRegion  string   `json:"locationRegion"`
	LocationCountry string   `json:"locationCountry"`

	WeatherTemperature *float64 `json:"weatherTemperature"`
	WeatherHumidity    *float64 `json:"weatherHumidity"`
	WeatherConditions  string   `json:"weatherConditions"`

	Notes          string `json:"notes"`
	IsPublic       bool   `json:"isPublic"`
	ProcessingTime int64  `json:"processingTime"`
	ModelVersion   string `json:"modelVersion"`
}

func (in *CreateInput) validate() []string {
	var problems []string
	in.Prediction = strings.TrimSpace(in.Prediction)
	if in.Prediction == "" {
		problems = append(problems, "prediction is required")
	}
	if in.Confidence == nil {
		problems = append(problems, "confidence is required")
	} else if *in.Confidence < 0 || *in.Confidence > 1 {
		problems = append(problems, "confidence must be between 0 and 1")
	}

	if in.PlantType == "" {
		in.PlantType = "rice"
	}
	if !validPlantType(in.PlantType) {
		problems = append(problems, "plantType must be one of "+strings.Join(models.PlantTypes, ", "))
	}

	switch models.DetectionStatus(in.Status) {
	case "":
		in.Status = string(models.StatusCompleted)
	case models.StatusProcessing, models.StatusCompleted, models.StatusFailed:
	default:
		problems = append(problems, "status must be one of processing, completed, failed")
	}

	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		problems = append(problems, "notes cannot exceed 500 characters")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		problems = append(problems, "latitude must be between -90 and 90")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		problems = append(problems, "longitude must be between -180 and 180")
	}
	if in.ImageSize < 0 || in.ProcessingTime < 0 {
		problems = append(problems, "imageSize and processingTime cannot be negative")
	}
	return problems
}

func validPlantType(p string) bool {
	for _, t := range models.PlantTypes {
		if t == p {
			return true
		}
	}
	return false
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

type StatRow struct {
	PlantType  string `json:"plantType"`
	DiseaseKey string `json:"diseaseKey"`
	Count      int64  `json:"count"`
}

type Stats struct {
	Total   int64     `json:"total"`
	Healthy int64     `json:"healthy"`
	Groups  []StatRow `json:"groups"`
}

type Service struct {
	db    *gorm.DB
	kb    *disease.KnowledgeBase
	store storage.Storage
	log   *zap.Logger
}

func NewService(db *gorm.DB, kb *disease.KnowledgeBase, store storage.Storage, log *zap.Logger) *Service {
	return &Service{db: db, kb: kb, store: store, log: log}
}

// Create stores the detection and bumps the owner's detection count in one
// transaction.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Detection, error) {
	problems := in.validate()
	if in.ImagePath != "" && (s.store == nil || !s.store.Owns(in.ImagePath, userID)) {
		problems = append(problems, "imagePath must reference an image you uploaded")
	}
	if len(problems) > 0 {
		return nil, apperror.Validation("Validasi gagal", problems...)
	}

	entry := s.kb.Describe(in.Prediction)
	if in.Severity == "" {
		in.Severity = string(entry.Severity)
	}
	if in.Description == "" {
		in.Description = entry.Description
	}
	if in.Symptoms == nil {
		in.Symptoms = entry.Symptoms
	}
	if in.Treatments == nil {
		in.Treatments = entry.Treatments
	}
	if in.Prevention == nil {
		in.Prevention = entry.Prevention
	}
	if in.ModelVersion == "" {
		in.ModelVersion = "1.0"
	}

	d := &models.Detection{
		UserID:             userID,
		OriginalFileName:   in.OriginalFileName,
		ImagePath:          in.ImagePath,
		ImageSize:          in.ImageSize,
		Prediction:         in.Prediction,
		DiseaseKey:         entry.Key,
		Confidence:         *in.Confidence,
		PlantType:          in.PlantType,
		Severity:           in.Severity,
		Description:        in.Description,
		Status:             models.DetectionStatus(in.Status),
		Symptoms:           datatypes.NewJSONType(orEmpty(in.Symptoms)),
		Causes:             datatypes.NewJSONType(orEmpty(in.Causes)),
		Treatments:         datatypes.NewJSONType(orEmpty(in.Treatments)),
		Prevention:         datatypes.NewJSONType(orEmpty(in.Prevention)),
		Tags:               datatypes.NewJSONType(orEmpty(in.Tags)),
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		LocationAddress:    in.LocationAddress,
		LocationRegion:     in.LocationRegion,
		LocationCountry:    in.LocationCountry,
		WeatherTemperature: in.WeatherTemperature,
		WeatherHumidity:    in.WeatherHumidity,
		WeatherConditions:  in.WeatherConditions,
		Notes:              in.Notes,
		IsPublic:           in.IsPublic,
		ProcessingTime:     in.ProcessingTime,
		ModelVersion:       in.ModelVersion,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("detection_count", gorm.Expr("detection_count + ?", 1)).Error
	})
	if err != nil {
		return nil, apperror.Internal("Gagal menyimpan hasil analisis", err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Detection, error) {
	var d models.Detection
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Analisis tidak ditemukan", "analysis not found")
		}
		return nil, apperror.Internal("Gagal mengambil analisis", err)
	}
	return &d, nil
}

// GetFor returns the record when the caller owns it, is an admin, or the
// record is public.
func (s *Service) GetFor(ctx context.Context, id uint, identity *middleware.Identity) (*models.Detection, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsPublic && !middleware.CanAccess(identity, d.UserID) {
		return nil, apperror.Authorization("Akses ditolak", "you can only access your own resources")
	}
	return d, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Detection, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Detection{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil riwayat analisis", err)
	}

	analyses := []models.Detection{}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&analyses).Error
	if err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil riwayat analisis", err)
	}
	return analyses, total, nil
}

func (s *Service) RecentByUser(ctx context.Context, userID uint, limit int) ([]models.Detection, error) {
	recent, _, err := s.ListByUser(ctx, userID, limit, 0)
	return recent, err
}

type Filter struct {
	PlantType  string
	DiseaseKey string
}

func (s *Service) ListAll(ctx context.Context, f Filter, page, limit int) ([]models.Detection, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Detection{})
	if f.PlantType != "" {
		q = q.Where("plant_type = ?", f.PlantType)
	}
	if f.DiseaseKey != "" {
		q = q.Where("disease_key = ?", f.DiseaseKey)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil data analisis", err)
	}

	analyses := []models.Detection{}
	err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil data analisis", err)
	}
	return analyses, total, nil
}

type Author struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type PublicDetection struct {
	models.Detection
	User *Author `json:"user"`
}

func (s *Service) ListPublic(ctx context.Context, page, limit int) ([]PublicDetection, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Detection{}).Where("is_public = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil analisis publik", err)
	}

	var rows []models.Detection
	err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil analisis publik", err)
	}

	out := make([]PublicDetection, 0, len(rows))
	for _, d := range rows {
		pd := PublicDetection{Detection: d}
		if d.User != nil {
			pd.User = &Author{ID: d.User.ID, Name: d.User.Name}
		}
		pd.Detection.User = nil
		out = append(out, pd)
	}
	return out, total, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Groups: []StatRow{}}
	db := s.db.WithContext(ctx)

	err := db.Model(&models.Detection{}).
		Select("plant_type, disease_key, COUNT(id) AS count").
		Group("plant_type, disease_key").
		Order("count DESC, plant_type, disease_key").
		Scan(&stats.Groups).Error
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}

	for _, g := range stats.Groups {
		stats.Total += g.Count
		if g.DiseaseKey == disease.HealthyKey {
			stats.Healthy += g.Count
		}
	}
	return stats, nil
}

// Delete removes a record owned by the caller, or any record for admins. The
// stored image goes with it once no other record points at it.
func (s *Service) Delete(ctx context.Context, id uint, identity *middleware.Identity) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !middleware.CanAccess(identity, d.UserID) {
		return apperror.Authorization("Akses ditolak", "you can only delete your own analyses")
	}

	if err := s.db.WithContext(ctx).Delete(&models.Detection{}, d.ID).Error; err != nil {
		return apperror.Internal("Gagal menghapus analisis", err)
	}

	if d.ImagePath == "" || s.store == nil {
		return nil
	}

	// the same upload may back several saved analyses
	var refs int64
	if err := s.db.WithContext(ctx).Model(&models.Detection{}).
		Where("image_path = ?", d.ImagePath).
		Count(&refs).Error; err != nil {
		s.log.Warn("failed to count image references",
			zap.Uint("detection_id", d.ID),
			zap.Error(err),
		)
		return nil
	}
	if refs == 0 {
		if err := s.store.Delete(ctx, d.ImagePath); err != nil {
			s.log.Warn("failed to delete detection image",
				zap.Uint("detection_id", d.ID),
				zap.String("path", d.ImagePath),
				zap.Error(err),
			)
		}
	}
	return nil
}
