// Package labels generates the QR code labels glued onto physical gear.
// Each label encodes a short code built from the item type's prefix and
// its reference, e.g. "REG-12" for regulator number 12.
package labels

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/divegear/gearbase/internal/model"
)

// QRSize is the pixel size of a single label's QR code.
const QRSize = 120

// SheetColumns is the number of labels per row on a printed sheet.
const SheetColumns = 7

// Code builds the label code for an item.
func Code(itemType string, reference int64) (string, error) {
	gear, ok := model.GearByType(itemType)
	if !ok {
		return "", fmt.Errorf("unknown item type %q", itemType)
	}
	return gear.Prefix + "-" + strconv.FormatInt(reference, 10), nil
}

// ParseCode resolves a scanned label code back to an item type and
// reference.
func ParseCode(code string) (string, int64, error) {
	prefix, number, found := strings.Cut(strings.TrimSpace(code), "-")
	if !found {
		return "", 0, fmt.Errorf("malformed label code %q", code)
	}

	gear, ok := model.GearByPrefix(strings.ToUpper(prefix))
	if !ok {
		return "", 0, fmt.Errorf("unknown label prefix %q", prefix)
	}

	reference, err := strconv.ParseInt(number, 10, 64)
	if err != nil || reference < 1 {
		return "", 0, fmt.Errorf("bad reference in label code %q", code)
	}

	return gear.Type, reference, nil
}

// Label renders a single item's QR code as PNG.
func Label(itemType string, reference int64) ([]byte, error) {
	code, err := Code(itemType, reference)
	if err != nil {
		return nil, err
	}

	data, err := qrcode.Encode(code, qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("encoding QR code for %s: %w", code, err)
	}
	return data, nil
}

// Sheet renders a printable grid of QR code labels for the given items,
// SheetColumns per row, as a single PNG.
func Sheet(items []model.Item) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to label")
	}

	rows := (len(items) + SheetColumns - 1) / SheetColumns
	sheet := image.NewRGBA(image.Rect(0, 0, SheetColumns*QRSize, rows*QRSize))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, item := range items {
		code, err := Code(item.Type, item.Reference)
		if err != nil {
			return nil, err
		}

		qr, err := qrcode.New(code, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("encoding QR code for %s: %w", code, err)
		}

		x := (i % SheetColumns) * QRSize
		y := (i / SheetColumns) * QRSize
		cell := image.Rect(x, y, x+QRSize, y+QRSize)
		draw.Draw(sheet, cell, qr.Image(QRSize), image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return nil, fmt.Errorf("encoding label sheet: %w", err)
	}
	return buf.Bytes(), nil
}
