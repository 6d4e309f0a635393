package services

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"trinix-backend/models"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TokenPrefix marks badges issued by this system. LegacyTokenPrefix was used
// by earlier registrations and is still accepted when scanning.
const (
	TokenPrefix       = "TRINIX-CUSTOMER:"
	LegacyTokenPrefix = "PS-CUSTOMER:"
)

const (
	badgeSize     = 300
	captionHeight = 40
	maxNameLength = 20
)

var ErrNoQRCode = errors.New("no QR code found in image")

// BadgeToken is the text encoded in a customer's badge.
func BadgeToken(c models.Customer) string {
	return fmt.Sprintf("%s%d:%s:%s", TokenPrefix, c.ID, c.Name, c.Phone)
}

// ParseBadgeToken extracts the customer id from a prefixed token.
func ParseBadgeToken(data string) (int, bool) {
	var rest string
	switch {
	case strings.HasPrefix(data, TokenPrefix):
		rest = strings.TrimPrefix(data, TokenPrefix)
	case strings.HasPrefix(data, LegacyTokenPrefix):
		rest = strings.TrimPrefix(data, LegacyTokenPrefix)
	default:
		return 0, false
	}

	parts := strings.Split(rest, ":")
	if len(parts) < 3 {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	return id, true
}

// ResolveBadge finds the customer a scanned badge belongs to. A prefixed
// token resolves by id; otherwise each customer is tried in order against
// the legacy name:phone:location layouts, then by phone, then by name.
func ResolveBadge(data string, customers []models.Customer) *models.Customer {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil
	}

	if id, ok := ParseBadgeToken(data); ok {
		for i := range customers {
			if customers[i].ID == id {
				return &customers[i]
			}
		}
	}

	for i := range customers {
		c := &customers[i]
		legacy := c.Name + ":" + c.Phone + ":" + c.Location
		switch {
		case data == TokenPrefix+legacy, data == legacy:
			return c
		case c.Phone != "" && strings.Contains(data, c.Phone):
			return c
		case c.Name != "" && strings.Contains(data, c.Name):
			return c
		}
	}
	return nil
}

// BadgeFileName is customer_{id}_{name}.png with the name reduced to
// letters, digits, '-' and '_'.
func BadgeFileName(id int, name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			return r
		}
		return -1
	}, name)
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "_")
	if clean == "" {
		return fmt.Sprintf("customer_%d.png", id)
	}
	return fmt.Sprintf("customer_%d_%s.png", id, clean)
}

// BadgeCaption returns the two caption lines printed under the code.
func BadgeCaption(lounge, name string) (string, string) {
	display := name
	if len([]rune(display)) > maxNameLength {
		display = string([]rune(display)[:17]) + "..."
	}
	return lounge, "Name: " + display
}

type BadgeService struct {
	dir    string
	lounge string
}

func NewBadgeService(dir, lounge string) *BadgeService {
	return &BadgeService{dir: dir, lounge: lounge}
}

// Generate renders the customer's badge into the QR directory and returns
// the file path.
func (s *BadgeService) Generate(c models.Customer) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create QR directory: %w", err)
	}

	img, err := s.Render(c)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, BadgeFileName(c.ID, c.Name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create badge file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode badge: %w", err)
	}
	return path, nil
}

// Render draws the QR code with the lounge name and customer name below it.
func (s *BadgeService) Render(c models.Customer) (image.Image, error) {
	code, err := qrcode.New(BadgeToken(c), qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("failed to build QR code: %w", err)
	}
	qr := code.Image(badgeSize)

	canvas := image.NewRGBA(image.Rect(0, 0, badgeSize, badgeSize+captionHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, qr.Bounds(), qr, image.Point{}, draw.Src)

	title, nameLine := BadgeCaption(s.lounge, c.Name)
	drawCentered(canvas, title, badgeSize+15)
	drawCentered(canvas, nameLine, badgeSize+32)
	return canvas, nil
}

func drawCentered(dst draw.Image, text string, baseline int) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	x := (dst.Bounds().Dx() - width) / 2
	if x < 0 {
		x = 0
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// Decode reads a PNG or JPEG image and returns the text of the QR code in it.
func (s *BadgeService) Decode(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to prepare image: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoQRCode, err)
	}
	return result.GetText(), nil
}
