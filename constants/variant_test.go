package constants

import "testing"

func TestCanonicalizeSeverity(t *testing.T) {
	cases := []struct {
		in      string
		want    Severity
		matched bool
	}{
		{"dented", SeverityDented, true},
		{"Dented", SeverityDented, true},
		{"  shattered  ", SeverityShattered, true},
		{"scuffed", SeverityScratched, true},
		{"smashed", SeverityShattered, true},
		{"caved in", SeverityCrushed, true},
		{"torn off", SeverityMissing, true},
		{"intact", SeverityNone, true},
		{"n/a", SeverityUnknown, true},
		{"totally wrecked", SeverityUnknown, false},
		{"", SeverityUnknown, false},
		{"severe", SeverityUnknown, false},
	}
	for _, c := range cases {
		got, matched := CanonicalizeSeverity(c.in)
		if got != c.want || matched != c.matched {
			t.Errorf("CanonicalizeSeverity(%q) = (%q, %v), want (%q, %v)",
				c.in, got, matched, c.want, c.matched)
		}
	}
}

func TestVehicleSide(t *testing.T) {
	if got := VariantFront.VehicleSide(); got != "front" {
		t.Errorf("front variant side = %q", got)
	}
	if got := VariantBack.VehicleSide(); got != "back" {
		t.Errorf("back variant side = %q", got)
	}
	if got := VariantUnclassified.VehicleSide(); got != Unknown {
		t.Errorf("unclassified variant side = %q", got)
	}
}

func TestDamageFieldsFor(t *testing.T) {
	if got := DamageFieldsFor(VariantFront); len(got) != 5 {
		t.Errorf("front fields = %d, want 5", len(got))
	}
	if got := DamageFieldsFor(VariantBack); len(got) != 5 {
		t.Errorf("back fields = %d, want 5", len(got))
	}
	if got := DamageFieldsFor(VariantUnclassified); got != nil {
		t.Errorf("unclassified fields = %v, want nil", got)
	}
}

func TestMapExtToKind(t *testing.T) {
	cases := map[string]MediaKind{
		".JPG":  KindJPEG,
		"jpeg":  KindJPEG,
		".png":  KindPNG,
		"pdf":   KindPDF,
		".heic": KindUnknown,
	}
	for ext, want := range cases {
		if got := MapExtToKind(ext); got != want {
			t.Errorf("MapExtToKind(%q) = %q, want %q", ext, got, want)
		}
	}
}
