package core

import (
	"testing"
)

func TestParseTail(t *testing.T) {
	tests := []struct {
		in      string
		want    Tail
		wantErr bool
	}{
		{"16:0", Tail{Carbons: 16, Type: Acyl}, false},
		{"O-18:1", Tail{Carbons: 18, DoubleBonds: 1, Type: Ether}, false},
		{"P-16:0", Tail{Carbons: 16, Type: Vinyl}, false},
		{"18:1;O", Tail{Carbons: 18, DoubleBonds: 1, Type: Acyl, Hydroxyls: 1}, false},
		{"24:0;O2", Tail{Carbons: 24, Type: Acyl, Hydroxyls: 2}, false},
		{"18:1(d7)", Tail{Carbons: 18, DoubleBonds: 1, Type: Acyl, Deuterium: 7}, false},
		{"18", Tail{}, true},
		{"0:0", Tail{}, true},
		{"2:4", Tail{}, true},
		{"X-16:0", Tail{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTail(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTail(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTail(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if !tt.wantErr && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestTailComposition(t *testing.T) {
	tests := []struct {
		name string
		tail Tail
		want string
	}{
		{"palmitoyl", Tail{Carbons: 16, Type: Acyl}, "C16H31O"},
		{"oleoyl", Tail{Carbons: 18, DoubleBonds: 1, Type: Acyl}, "C18H33O"},
		{"hexadecyl", Tail{Carbons: 16, Type: Ether}, "C16H33"},
		{"hexadecenyl", Tail{Carbons: 16, Type: Vinyl}, "C16H31"},
		{"sphingosine", Tail{Carbons: 18, DoubleBonds: 1, Type: Base, Hydroxyls: 2}, "C18H37NO2"},
		{"deuterated", Tail{Carbons: 18, DoubleBonds: 1, Type: Acyl, Deuterium: 7}, "C18H26D7O"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tail.Composition().String(); got != tt.want {
				t.Errorf("Composition() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTailNeutral(t *testing.T) {
	palmitic := Tail{Carbons: 16, Type: Acyl}.Neutral()
	if got := palmitic.String(); got != "C16H32O2" {
		t.Errorf("Neutral() = %s, want C16H32O2", got)
	}
}

func TestBaseTail(t *testing.T) {
	base, err := BaseTail("SPB;O2", 18)
	if err != nil {
		t.Fatalf("BaseTail() error = %v", err)
	}
	if base.String() != "18:1;O2" || base.Type != Base {
		t.Errorf("BaseTail() = %+v", base)
	}

	if _, err := BaseTail("nope", 18); err == nil {
		t.Error("expected error for unknown base type")
	}
	if _, err := BaseTail("SPB;O2", 0); err == nil {
		t.Error("expected error for zero length")
	}
}

func TestDefaultPoolIsCopy(t *testing.T) {
	pool := DefaultPool(Acyl)
	pool[0].Carbons = 99
	if DefaultAcylPool[0].Carbons == 99 {
		t.Error("DefaultPool must return a copy")
	}
	if len(DefaultPool(Base)) != 0 {
		t.Error("base tails have no default pool")
	}
}
