package labels

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/divegear/gearbase/internal/model"
)

func TestCodeRoundTrip(t *testing.T) {
	code, err := Code(model.TypeFirstStage, 12)
	if err != nil {
		t.Fatalf("Code: %v", err)
	}
	if code != "REG-12" {
		t.Errorf("expected REG-12, got %s", code)
	}

	itemType, reference, err := ParseCode(code)
	if err != nil {
		t.Fatalf("ParseCode: %v", err)
	}
	if itemType != model.TypeFirstStage || reference != 12 {
		t.Errorf("round trip failed: %s %d", itemType, reference)
	}
}

func TestParseCodeNormalizes(t *testing.T) {
	itemType, reference, err := ParseCode("  msk-3 ")
	if err != nil {
		t.Fatalf("ParseCode: %v", err)
	}
	if itemType != model.TypeMask || reference != 3 {
		t.Errorf("expected mask 3, got %s %d", itemType, reference)
	}
}

func TestParseCodeRejectsGarbage(t *testing.T) {
	cases := []string{"", "REG", "XXX-1", "REG-zero", "REG--1", "REG-0"}
	for _, c := range cases {
		if _, _, err := ParseCode(c); err == nil {
			t.Errorf("expected error for %q", c)
		}
	}
}

func TestCodeUnknownType(t *testing.T) {
	if _, err := Code("submarine", 1); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestLabelIsPNG(t *testing.T) {
	data, err := Label(model.TypeTank, 5)
	if err != nil {
		t.Fatalf("Label: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding label: %v", err)
	}
	if img.Bounds().Dx() != QRSize {
		t.Errorf("expected %dpx wide label, got %d", QRSize, img.Bounds().Dx())
	}
}

func TestSheetLayout(t *testing.T) {
	items := make([]model.Item, 0, SheetColumns+3)
	for i := int64(1); i <= int64(SheetColumns+3); i++ {
		items = append(items, model.Item{Type: model.TypeMask, Reference: i})
	}

	data, err := Sheet(items)
	if err != nil {
		t.Fatalf("Sheet: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding sheet: %v", err)
	}

	// SheetColumns+3 labels wrap onto two rows.
	bounds := img.Bounds()
	if bounds.Dx() != SheetColumns*QRSize {
		t.Errorf("expected %d columns, got width %d", SheetColumns, bounds.Dx())
	}
	if bounds.Dy() != 2*QRSize {
		t.Errorf("expected 2 rows, got height %d", bounds.Dy())
	}
}

func TestSheetEmpty(t *testing.T) {
	if _, err := Sheet(nil); err == nil {
		t.Error("expected error for empty sheet")
	}
}
