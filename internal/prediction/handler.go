package prediction

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/disease"
	"github.com/sahabattani/backend/internal/middleware"
	"github.com/sahabattani/backend/internal/response"
	"github.com/sahabattani/backend/internal/storage"
	"go.uber.org/zap"
)

type TopPrediction struct {
	Prediction
	DisplayName string `json:"displayName"`
}

type ImageInfo struct {
	OriginalFileName string `json:"originalFileName"`
	ContentType      string `json:"contentType"`
	Size             int64  `json:"size"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	// Path is set only when the image was stored for an authenticated caller.
	Path string `json:"path,omitempty"`
}

type Outcome struct {
	Predictions    []Prediction  `json:"predictions"`
	TopPrediction  TopPrediction `json:"topPrediction"`
	DiseaseKey     string        `json:"diseaseKey"`
	Disease        disease.Entry `json:"disease"`
	SeverityStyle  string        `json:"severityStyle"`
	Image          ImageInfo     `json:"image"`
	ProcessingTime int64         `json:"processingTime"`
	ModelVersion   string        `json:"modelVersion,omitempty"`
}

type Handler struct {
	classifier Classifier
	kb         *disease.KnowledgeBase
	store      storage.Storage
	maxSize    int64
	log        *zap.Logger
}

func NewHandler(classifier Classifier, kb *disease.KnowledgeBase, store storage.Storage, maxSize int64, log *zap.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		kb:         kb,
		store:      store,
		maxSize:    maxSize,
		log:        log,
	}
}

func (h *Handler) Predict(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperror.Validation("Gambar wajib diunggah", "no image file provided")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return apperror.Validation("Format file tidak didukung", "only image files are allowed")
	}
	if fh.Size > h.maxSize {
		return apperror.Validation("Ukuran gambar terlalu besar", "image exceeds the maximum upload size").
			WithStatus(fiber.StatusRequestEntityTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return apperror.Internal("Gagal membaca gambar", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxSize+1))
	if err != nil {
		return apperror.Internal("Gagal membaca gambar", err)
	}
	if int64(len(data)) > h.maxSize {
		return apperror.Validation("Ukuran gambar terlalu besar", "image exceeds the maximum upload size").
			WithStatus(fiber.StatusRequestEntityTooLarge)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return apperror.Validation("Gambar tidak valid", "image could not be decoded")
	}

	start := time.Now()
	result, err := h.classifier.Classify(c.UserContext(), data)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return apperror.Upstream("Layanan prediksi belum dikonfigurasi", err.Error()).
				WithStatus(fiber.StatusServiceUnavailable)
		}
		return err
	}
	elapsed := time.Since(start)

	top, ok := result.Top()
	if !ok {
		return apperror.Upstream("Prediksi gagal", "classifier returned no predictions")
	}

	entry := h.kb.Describe(top.TagName)
	out := Outcome{
		Predictions: result.Predictions,
		TopPrediction: TopPrediction{
			Prediction:  top,
			DisplayName: disease.HumanizeName(top.TagName),
		},
		DiseaseKey:    entry.Key,
		Disease:       entry,
		SeverityStyle: disease.SeverityStyle(entry.Severity),
		Image: ImageInfo{
			OriginalFileName: fh.Filename,
			ContentType:      contentType,
			Size:             int64(len(data)),
			Width:            cfg.Width,
			Height:           cfg.Height,
		},
		ProcessingTime: elapsed.Milliseconds(),
		ModelVersion:   result.Iteration,
	}

	if identity, ok := middleware.CurrentIdentity(c); ok && h.store != nil {
		path, err := h.store.Save(c.UserContext(), identity.ID, fh.Filename, contentType, data)
		if err != nil {
			h.log.Warn("failed to store prediction image",
				zap.Uint("user_id", identity.ID),
				zap.Error(err),
			)
		} else {
			out.Image.Path = path
		}
	}

	return response.Success(c, out, "Prediksi berhasil")
}
