package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

var ErrUnsupportedImage = errors.New("unsupported image format, only PNG, JPG and JPEG are allowed")

// Uploader shrinks images and posts them to the image host.
type Uploader struct {
	URL      string
	Preset   string
	MaxWidth uint

	http    *http.Client
	metrics *Metrics
}

func NewUploader(uploadURL, preset string, maxWidth uint, timeout time.Duration, metrics *Metrics) *Uploader {
	return &Uploader{
		URL:      uploadURL,
		Preset:   preset,
		MaxWidth: maxWidth,
		http:     &http.Client{Timeout: timeout},
		metrics:  metrics,
	}
}

// Upload decodes a PNG or JPEG, resizes it down to MaxWidth and sends it to
// the image host as a JPEG.
func (u *Uploader) Upload(ctx context.Context, filename string, src io.Reader) (models.Image, error) {
	var img image.Image
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(src)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(src)
	default:
		return models.Image{}, ErrUnsupportedImage
	}
	if err != nil {
		return models.Image{}, fmt.Errorf("decode image: %w", err)
	}

	if u.MaxWidth > 0 && uint(img.Bounds().Dx()) > u.MaxWidth {
		img = resize.Resize(u.MaxWidth, 0, img, resize.Lanczos3)
	}

	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, &jpeg.Options{Quality: 80}); err != nil {
		return models.Image{}, fmt.Errorf("encode image: %w", err)
	}

	publicID := uuid.New().String()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", publicID+".jpg")
	if err != nil {
		return models.Image{}, err
	}
	if _, err := io.Copy(part, &encoded); err != nil {
		return models.Image{}, err
	}
	if err := form.WriteField("upload_preset", u.Preset); err != nil {
		return models.Image{}, err
	}
	if err := form.WriteField("public_id", publicID); err != nil {
		return models.Image{}, err
	}
	if err := form.Close(); err != nil {
		return models.Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, &body)
	if err != nil {
		return models.Image{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	start := time.Now()
	resp, err := u.http.Do(req)
	if err != nil {
		u.metrics.observe("/upload", http.MethodPost, "error", time.Since(start))
		return models.Image{}, fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()
	u.metrics.observe("/upload", http.MethodPost, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Image{}, fmt.Errorf("upload image: %w", errorFrom(resp))
	}
	var out struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Image{}, fmt.Errorf("decode upload response: %w", err)
	}
	if out.SecureURL == "" {
		return models.Image{}, errors.New("upload image: response has no secure_url")
	}
	return models.Image{URL: out.SecureURL, PublicID: out.PublicID}, nil
}
