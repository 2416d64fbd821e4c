package fonts

import (
	"errors"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestMissingFontDegradesToDefaultFace(t *testing.T) {
	src := NewSource(Config{
		NormalPath: "/nonexistent/normal.ttf",
		ItalicPath: "/nonexistent/italic.ttf",
	})

	if len(src.Degradations()) != 2 {
		t.Fatalf("Degradations() = %v, want 2 entries", src.Degradations())
	}

	face := src.Face(FamilyNormal, WeightBold, 255)
	if face != basicfont.Face7x13 {
		t.Error("missing font should yield the built-in bitmap face")
	}
	if got := src.Face(FamilyItalic, WeightItalic, 116); got != basicfont.Face7x13 {
		t.Error("missing italic font should yield the built-in bitmap face")
	}
}

func TestEmptyConfigDegrades(t *testing.T) {
	// No paths and unresolvable names: both families degrade, never panic.
	src := NewSource(Config{NormalName: "definitely-not-a-real-font-919.ttf"})
	if src.Face(FamilyNormal, WeightMedium, 157) == nil {
		t.Fatal("Face must never return nil")
	}
}

// fakeVariable records which selection path was taken.
type fakeVariable struct {
	namedErr  error
	named     string
	axisValue float64
}

func (f *fakeVariable) SelectNamedVariation(name string) error {
	if f.namedErr != nil {
		return f.namedErr
	}
	f.named = name
	return nil
}

func (f *fakeVariable) SelectWeightAxis(value float64) error {
	f.axisValue = value
	return nil
}

func TestSelectWeightChain(t *testing.T) {
	t.Run("named variation supported", func(t *testing.T) {
		v := &fakeVariable{}
		selectWeight(v, WeightBold)
		if v.named != "Bold" {
			t.Errorf("named = %q, want Bold", v.named)
		}
		if v.axisValue != 0 {
			t.Errorf("axis fallback taken unexpectedly: %v", v.axisValue)
		}
	})

	t.Run("named variation rejected falls back to axis", func(t *testing.T) {
		v := &fakeVariable{namedErr: errors.New("unsupported")}
		selectWeight(v, WeightBold)
		if v.axisValue != 700 {
			t.Errorf("axis = %v, want 700", v.axisValue)
		}
	})

	t.Run("medium maps to 500", func(t *testing.T) {
		v := &fakeVariable{namedErr: errors.New("unsupported")}
		selectWeight(v, WeightMedium)
		if v.axisValue != 500 {
			t.Errorf("axis = %v, want 500", v.axisValue)
		}
	})

	t.Run("no axis fallback leaves base font", func(t *testing.T) {
		v := &fakeVariable{namedErr: errors.New("unsupported")}
		selectWeight(v, WeightItalic)
		if v.axisValue != 0 {
			t.Errorf("axis = %v, want untouched", v.axisValue)
		}
	})

	t.Run("non-variable resource passes through", func(t *testing.T) {
		selectWeight(struct{}{}, WeightBold) // must not panic
	})
}
