package roles

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "brackets and comma lists",
			in:   []string{"Lead Vocals [backing]", "Guitar-Bass, Drums"},
			want: []string{"Drums", "Guitar Bass", "Lead Vocals"},
		},
		{
			name: "all bracketed and blank inputs drop",
			in:   []string{"[unknown]", "", "  "},
			want: []string{},
		},
		{
			name: "nested brackets fully stripped",
			in:   []string{"Bass [Session [Winter]]"},
			want: []string{"Bass"},
		},
		{
			name: "dash runs collapse to one space",
			in:   []string{"Co--Producer", "Mix–—Engineer"},
			want: []string{"Co Producer", "Mix Engineer"},
		},
		{
			name: "capitalizes after whitespace",
			in:   []string{"lead vocals", "drum machine"},
			want: []string{"Drum Machine", "Lead Vocals"},
		},
		{
			name: "duplicates collapse",
			in:   []string{"Drums", "drums", " Drums "},
			want: []string{"Drums"},
		},
		{
			name: "comma split trims each part",
			in:   []string{"Piano ,  Organ"},
			want: []string{"Organ", "Piano"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsASet(t *testing.T) {
	got := Normalize([]string{"Vocals [lead]", "Vocals [backing]", "vocals"})
	// "Vocals", "Vocals" (again) and lowercase "vocals" differ only before
	// normalization; the result must hold each canonical role once.
	if len(got) != 1 || got[0] != "Vocals" {
		t.Errorf("got %q, want [Vocals]", got)
	}
}
