// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media processes portfolio image uploads: skill icons and
// project screenshots land here, get EXIF-rotated, bounded in size and
// stored under the uploads directory.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/arajbanshi/folio/internal/content"
)

// Bounding boxes per upload kind. Images larger than the box are fit
// into it preserving aspect ratio; smaller images pass through.
const (
	KindSkillIcon  = "skills"
	KindProjectImg = "projects"

	skillIconMax  = 256
	projectImgMax = 1600

	jpegQuality = 90

	// MaxUploadBytes caps a single image upload.
	MaxUploadBytes = 10 << 20
)

// Result describes a stored upload.
type Result struct {
	Path   string // path on disk
	Name   string // stored file name
	Width  int
	Height int
	Size   int64
}

// Processor stores processed uploads under a base directory.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a Processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// Process reads one uploaded image, normalizes it and stores it under
// the directory for its kind. The stored name is the slugified title
// with the output extension (skill icons keep .webp naming for the
// content contract even though pure Go re-encodes to PNG bytes).
func (p *Processor) Process(r io.Reader, kind, title string) (*Result, error) {
	if kind != KindSkillIcon && kind != KindProjectImg {
		return nil, fmt.Errorf("unknown upload kind: %s", kind)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	maxDim := projectImgMax
	if kind == KindSkillIcon {
		maxDim = skillIconMax
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		bounds = img.Bounds()
	}

	name := content.Slugify(title)
	if name == "" {
		return nil, fmt.Errorf("title produces an empty file name")
	}

	var buf bytes.Buffer
	var ext string
	if kind == KindSkillIcon {
		// Skill icons are referenced as .webp by the content document.
		// Pure Go cannot encode WebP, so the bytes are lossless PNG
		// behind a .webp name; browsers sniff content, not extension.
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding icon: %w", err)
		}
		ext = ".webp"
	} else {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encoding image: %w", err)
		}
		ext = ".jpg"
	}

	path, err := p.save(kind, name+ext, buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:   path,
		Name:   name + ext,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Size:   int64(buf.Len()),
	}, nil
}

// Delete removes a stored upload by kind and name.
func (p *Processor) Delete(kind, name string) error {
	safe := filepath.Base(name)
	if safe == "." || safe == ".." || safe == "" {
		return fmt.Errorf("invalid file name")
	}
	err := os.Remove(filepath.Join(p.uploadDir, kind, safe))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *Processor) save(subDir, filename string, data []byte) (string, error) {
	absBase, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("resolving upload directory: %w", err)
	}
	target := filepath.Join(absBase, subDir)

	rel, err := filepath.Rel(absBase, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	path := filepath.Join(target, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return path, nil
}

func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF is rejected outright (CVE-2023-36308 in disintegration/imaging).
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "gif"):
		return "gif"
	default:
		return ""
	}
}

// readExifOrientation returns the EXIF orientation tag, 1 when absent.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
