package triangle

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c int
		want    Kind
		wantErr error
	}{
		{"equilateral", 2, 2, 2, Equilateral, nil},
		{"equilateral large", 10, 10, 10, Equilateral, nil},
		{"isosceles first pair", 3, 4, 4, Isosceles, nil},
		{"isosceles last pair", 4, 3, 4, Isosceles, nil},
		{"isosceles outer pair", 10, 10, 2, Isosceles, nil},
		{"scalene", 3, 4, 5, Scalene, nil},
		{"scalene unordered", 10, 11, 12, Scalene, nil},
		{"degenerate accepted", 1, 2, 3, Scalene, nil},
		{"zero side", 0, 0, 0, "", ErrInvalidTriangle},
		{"negative side", 3, 4, -5, "", ErrInvalidTriangle},
		{"too long a", 1, 1, 3, "", ErrInvalidTriangle},
		{"too long b", 2, 5, 2, "", ErrInvalidTriangle},
		{"too long c", 2, 4, 7, "", ErrInvalidTriangle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.a, tt.b, tt.c)
			if err != tt.wantErr {
				t.Fatalf("Classify(%d, %d, %d) error = %v, want %v", tt.a, tt.b, tt.c, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Classify(%d, %d, %d) = %q, want %q", tt.a, tt.b, tt.c, got, tt.want)
			}
		})
	}
}
