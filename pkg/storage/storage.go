package storage

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	cardWidth   = 600
	cardHeight  = 320
	cardPadding = 30
	maxCells    = 20
)

var (
	cardBackground = color.NRGBA{R: 15, G: 12, B: 41, A: 255}
	trackColor     = color.NRGBA{R: 48, G: 43, B: 99, A: 255}
	correctColor   = color.NRGBA{R: 34, G: 197, B: 94, A: 255}
	wrongColor     = color.NRGBA{R: 239, G: 68, B: 68, A: 255}
)

// ResultCard данные карточки результата теста
type ResultCard struct {
	Score   int
	Correct int
	Total   int
}

// Storage представляет файловое хранилище
type Storage struct {
	basePath string
}

// NewStorage создает новое файловое хранилище
func NewStorage(basePath string) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// ScoreColor цвет полосы по проценту
func ScoreColor(score int) color.NRGBA {
	switch {
	case score >= 80:
		return correctColor
	case score >= 50:
		return color.NRGBA{R: 234, G: 179, B: 8, A: 255}
	}
	return wrongColor
}

// RenderCard рисует карточку: полоса процента и клетки по вопросам
func RenderCard(card ResultCard) image.Image {
	img := imaging.New(cardWidth, cardHeight, cardBackground)

	// Заголовочная полоса
	img = imaging.Paste(img, imaging.New(cardWidth, 12, ScoreColor(card.Score)), image.Pt(0, 0))

	// Полоса процента
	trackWidth := cardWidth - 2*cardPadding
	img = imaging.Paste(img, imaging.New(trackWidth, 40, trackColor), image.Pt(cardPadding, 80))
	if filled := trackWidth * clamp(card.Score, 0, 100) / 100; filled > 0 {
		img = imaging.Paste(img, imaging.New(filled, 40, ScoreColor(card.Score)), image.Pt(cardPadding, 80))
	}

	// Клетки ответов, при большом числе вопросов масштабируются
	cells := card.Total
	correct := card.Correct
	if cells > maxCells {
		correct = correct * maxCells / cells
		cells = maxCells
	}
	if cells > 0 {
		gap := 6
		size := (trackWidth - gap*(cells-1)) / cells
		if size > 60 {
			size = 60
		}
		for i := 0; i < cells; i++ {
			c := wrongColor
			if i < correct {
				c = correctColor
			}
			img = imaging.Paste(img, imaging.New(size, size, c), image.Pt(cardPadding+i*(size+gap), 180))
		}
	}
	return img
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EncodeCard пишет карточку в PNG
func EncodeCard(w io.Writer, card ResultCard) error {
	return imaging.Encode(w, RenderCard(card), imaging.PNG)
}

// SaveCard сохраняет карточку попытки и ее превью, возвращает путь к файлу
func (s *Storage) SaveCard(userID, attemptID uuid.UUID, card ResultCard) (string, error) {
	filePath := filepath.Join(s.basePath, "users", userID.String(), "cards", attemptID.String()+".png")
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create card directory: %w", err)
	}

	img := RenderCard(card)
	if err := imaging.Save(img, filePath); err != nil {
		return "", fmt.Errorf("failed to save card: %w", err)
	}
	if err := s.createThumbnail(img, filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// createThumbnail создает миниатюру карточки
func (s *Storage) createThumbnail(img image.Image, filePath string) error {
	thumbnail := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbnail, s.GetThumbnailPath(filePath), imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return nil
}

// GetThumbnailPath возвращает путь к миниатюре файла
func (s *Storage) GetThumbnailPath(filePath string) string {
	return strings.TrimSuffix(filePath, filepath.Ext(filePath)) + "_thumb.jpg"
}
