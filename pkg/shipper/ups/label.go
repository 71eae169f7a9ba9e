package ups

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // label images
	_ "image/jpeg"
	"image/png"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

// pixelsPerMM converts label pixels to page millimetres.
const pixelsPerMM = 2.83

func init() {
	// pdfcpu would otherwise create a config dir in the user's home.
	api.DisableConfigDir()
}

// Assembler turns a booking into a print-ready PDF.
type Assembler struct {
	rotation int
}

// NewAssembler creates an Assembler rotating label pages by rotation
// degrees. Values that are not a multiple of 90 are ignored.
func NewAssembler(rotation int) *Assembler {
	rotation = ((rotation % 360) + 360) % 360
	if rotation%90 != 0 {
		rotation = 0
	}
	return &Assembler{rotation: rotation}
}

// conf returns a fresh configuration; pdfcpu mutates it during a call.
func (a *Assembler) conf() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// Assemble builds the artifact. On error the returned artifact is still
// non-nil and carries the tracking number and the booking, so it can be
// assembled again later.
func (a *Assembler) Assemble(b *shipper.Booking) (*shipper.LabelArtifact, error) {
	artifact := &shipper.LabelArtifact{
		TrackingNumber:     b.TrackingNumber,
		Charges:            b.Charges,
		SupplementaryFiles: make(map[string][]byte),
		Booking:            b,
	}

	if len(b.LabelImage) == 0 {
		if err := decodeFailure(b); err != nil {
			return artifact, err
		}
		return artifact, shipper.NewArtifactError(carrierName, "UPS did not return a label image.")
	}

	page, err := a.labelPage(b.LabelImage, b.LabelFormat)
	if err != nil {
		return artifact, shipper.NewArtifactError(carrierName,
			fmt.Sprintf("Error while creating UPS label: %v", err)).WithCause(err)
	}

	documents := []io.ReadSeeker{bytes.NewReader(page)}
	var pdfForms []string
	for _, code := range slices.Sorted(maps.Keys(b.Forms)) {
		form := b.Forms[code]
		if isPDF(form) {
			documents = append(documents, bytes.NewReader(form.Data))
			pdfForms = append(pdfForms, code)
			continue
		}
		artifact.SupplementaryFiles[formFileName(code, form.Format)] = form.Data
	}

	if len(documents) == 1 {
		artifact.PrimaryFile = page
		return artifact, decodeFailure(b)
	}

	var merged bytes.Buffer
	if err := api.MergeRaw(documents, &merged, false, a.conf()); err != nil {
		// Keep the label printable and hand the forms out separately.
		artifact.PrimaryFile = page
		for _, code := range pdfForms {
			artifact.SupplementaryFiles[formFileName(code, "PDF")] = b.Forms[code].Data
		}
		return artifact, shipper.NewArtifactError(carrierName,
			fmt.Sprintf("Error while merging UPS customs forms: %v", err)).WithCause(err)
	}

	artifact.PrimaryFile = merged.Bytes()
	return artifact, decodeFailure(b)
}

// decodeFailure reports the documents of b that could not be decoded, or
// nil.
func decodeFailure(b *shipper.Booking) error {
	if len(b.DecodeErrors) == 0 {
		return nil
	}
	entries := make([]shipper.ErrorEntry, 0, len(b.DecodeErrors))
	for _, msg := range b.DecodeErrors {
		entries = append(entries, shipper.ErrorEntry{Code: "upload", Message: msg})
	}
	return shipper.NewArtifactError(carrierName, b.DecodeErrors[0]).WithEntries(entries)
}

// labelPage renders the label image onto a single page of the image size.
func (a *Assembler) labelPage(data []byte, format string) ([]byte, error) {
	if strings.EqualFold(format, "PDF") || bytes.HasPrefix(data, []byte("%PDF")) {
		return a.rotate(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s image: %w", strings.ToLower(format), err)
	}

	// GIF and JPEG labels are normalized to PNG before import.
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}

	bounds := img.Bounds()
	width := float64(bounds.Dx()) / pixelsPerMM
	height := float64(bounds.Dy()) / pixelsPerMM

	imp, err := api.Import(fmt.Sprintf("dimensions:%.2f %.2f, position:full", width, height), types.MILLIMETRES)
	if err != nil {
		return nil, fmt.Errorf("page setup: %w", err)
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, []io.Reader{&pngBuf}, imp, a.conf()); err != nil {
		return nil, fmt.Errorf("importing image: %w", err)
	}

	return a.rotate(out.Bytes())
}

func (a *Assembler) rotate(pdf []byte) ([]byte, error) {
	if a.rotation == 0 {
		return pdf, nil
	}
	var out bytes.Buffer
	if err := api.Rotate(bytes.NewReader(pdf), &out, a.rotation, nil, a.conf()); err != nil {
		return nil, fmt.Errorf("rotating page: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages of a PDF.
func (a *Assembler) PageCount(pdf []byte) (int, error) {
	return api.PageCount(bytes.NewReader(pdf), a.conf())
}

func isPDF(doc shipper.Document) bool {
	return strings.EqualFold(doc.Format, "PDF") || bytes.HasPrefix(doc.Data, []byte("%PDF"))
}

func formFileName(code, format string) string {
	ext := strings.ToLower(format)
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("form_%s.%s", code, ext)
}
