package natsort

import (
	"reflect"
	"sync"
	"testing"
)

func TestStringsNumericOrder(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "digit runs by value",
			in:   []string{"img-10.jpg", "img-2.jpg", "img-1.jpg"},
			want: []string{"img-1.jpg", "img-2.jpg", "img-10.jpg"},
		},
		{
			name: "case is ignored",
			in:   []string{"b.png", "A.png", "c.png"},
			want: []string{"A.png", "b.png", "c.png"},
		},
		{
			name: "chapters",
			in:   []string{"chapter 12", "chapter 3", "chapter 100", "chapter 20"},
			want: []string{"chapter 3", "chapter 12", "chapter 20", "chapter 100"},
		},
		{
			name: "empty",
			in:   []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string(nil), tt.in...)
			if got == nil {
				got = []string{}
			}
			Strings(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Strings(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"img-2.jpg", "img-10.jpg", -1},
		{"img-10.jpg", "img-2.jpg", 1},
		{"same.jpg", "same.jpg", 0},
		{"Photo.jpg", "photo.jpg", 0},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Less(tt.a, tt.b); got != (tt.want < 0) {
			t.Errorf("Less(%q, %q) = %v", tt.a, tt.b, got)
		}
	}
}

func TestByUsesSecondaryKey(t *testing.T) {
	type file struct{ name, path string }
	files := []file{
		{"cover.jpg", "b/cover.jpg"},
		{"cover.jpg", "a/cover.jpg"},
		{"01.jpg", "z/01.jpg"},
		{"cover.jpg", "a10/cover.jpg"},
		{"cover.jpg", "a2/cover.jpg"},
	}

	By(files,
		func(f file) string { return f.name },
		func(f file) string { return f.path },
	)

	want := []string{"z/01.jpg", "a/cover.jpg", "a2/cover.jpg", "a10/cover.jpg", "b/cover.jpg"}
	for i, f := range files {
		if f.path != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, f.path, want[i])
		}
	}
}

func TestCompareConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if Compare("img-2", "img-10") >= 0 {
					t.Error("img-2 should sort before img-10")
					return
				}
			}
		}()
	}
	wg.Wait()
}
