package fx

import (
	"math/rand/v2"
	"testing"
)

func drawsOf(sizes ...IVec2) []SystemDrawInfo {
	draws := make([]SystemDrawInfo, len(sizes))
	for n, s := range sizes {
		if s == (IVec2{}) {
			continue
		}
		draws[n] = SystemDrawInfo{
			WorldRect:    IRect{Min: IVec2{100, 100}, Max: IVec2{100 + s.X, 100 + s.Y}},
			NumParticles: 1,
		}
	}
	return draws
}

func TestPackAtlasRowPacking(t *testing.T) {
	draws := drawsOf(IVec2{50, 50}, IVec2{80, 30}, IVec2{40, 90})
	size := packAtlas(draws, DefaultAtlasSize, false)

	if size != (IVec2{512, 256}) {
		t.Errorf("size = %v, want (512,256)", size)
	}
	want := []IVec2{{0, 0}, {50, 0}, {130, 0}}
	for n, w := range want {
		if got := draws[n].AtlasPos; got != w {
			t.Errorf("draws[%d].AtlasPos = %v, want %v", n, got, w)
		}
	}
}

func TestPackAtlasNewRowUsesRowHeight(t *testing.T) {
	draws := drawsOf(IVec2{400, 100}, IVec2{200, 10}, IVec2{400, 10})
	packAtlas(draws, DefaultAtlasSize, false)

	want := []IVec2{{0, 0}, {0, 100}, {0, 110}}
	for n, w := range want {
		if got := draws[n].AtlasPos; got != w {
			t.Errorf("draws[%d].AtlasPos = %v, want %v", n, got, w)
		}
	}
}

func TestPackAtlasGrowth(t *testing.T) {
	tests := []struct {
		name  string
		start IVec2
		sizes []IVec2
		want  IVec2
		pos   []IVec2
	}{
		{
			name:  "height when wide",
			start: IVec2{512, 256},
			sizes: []IVec2{{300, 200}, {300, 200}},
			want:  IVec2{512, 512},
			pos:   []IVec2{{0, 0}, {0, 200}},
		},
		{
			name:  "width when tall",
			start: IVec2{256, 512},
			sizes: []IVec2{{200, 300}, {200, 300}},
			want:  IVec2{512, 512},
			pos:   []IVec2{{0, 0}, {200, 0}},
		},
		{
			name:  "pre-grown to largest",
			start: IVec2{512, 256},
			sizes: []IVec2{{600, 20}, {20, 300}},
			want:  IVec2{1024, 512},
			pos:   []IVec2{{0, 0}, {600, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draws := drawsOf(tt.sizes...)
			if got := packAtlas(draws, tt.start, false); got != tt.want {
				t.Errorf("size = %v, want %v", got, tt.want)
			}
			for n, w := range tt.pos {
				if got := draws[n].AtlasPos; got != w {
					t.Errorf("draws[%d].AtlasPos = %v, want %v", n, got, w)
				}
			}
		})
	}
}

func TestGrow(t *testing.T) {
	tests := []struct {
		size IVec2
		h    int
		want IVec2
	}{
		{IVec2{512, 256}, 10, IVec2{512, 512}},
		{IVec2{512, 512}, 10, IVec2{512, 1024}},
		{IVec2{512, 1024}, 10, IVec2{1024, 1024}},
		{IVec2{512, 1024}, 2000, IVec2{512, 2048}},
		{IVec2{1024, 2048}, 10, IVec2{2048, 2048}},
		{IVec2{2048, 1024}, 10, IVec2{2048, 2048}},
		{IVec2{2048, 2048}, 10, IVec2{2048, 2048}},
	}
	for _, tt := range tests {
		if got := grow(tt.size, tt.h); got != tt.want {
			t.Errorf("grow(%v, %d) = %v, want %v", tt.size, tt.h, got, tt.want)
		}
	}
}

func TestPackAtlasDropsAtMaximum(t *testing.T) {
	draws := drawsOf(IVec2{2048, 2048}, IVec2{10, 10})
	size := packAtlas(draws, DefaultAtlasSize, false)

	if size != MaxAtlasSize {
		t.Errorf("size = %v, want %v", size, MaxAtlasSize)
	}
	if draws[0].NumParticles != 1 || draws[0].AtlasPos != (IVec2{}) {
		t.Errorf("draws[0] = %+v, want placed at (0,0)", draws[0])
	}
	if !draws[1].Empty() {
		t.Errorf("draws[1].NumParticles = %d, want 0", draws[1].NumParticles)
	}
}

func TestPackAtlasDropsOversized(t *testing.T) {
	draws := drawsOf(IVec2{3000, 10}, IVec2{10, 2049}, IVec2{20, 20})
	size := packAtlas(draws, DefaultAtlasSize, false)

	if size != DefaultAtlasSize {
		t.Errorf("size = %v, want %v", size, DefaultAtlasSize)
	}
	if !draws[0].Empty() || !draws[1].Empty() {
		t.Errorf("oversized draws kept: %+v, %+v", draws[0], draws[1])
	}
	if draws[2].Empty() || draws[2].AtlasPos != (IVec2{}) {
		t.Errorf("draws[2] = %+v, want placed at (0,0)", draws[2])
	}
}

func TestPackAtlasSkipsEmpty(t *testing.T) {
	draws := drawsOf(IVec2{}, IVec2{30, 30}, IVec2{}, IVec2{30, 30})
	packAtlas(draws, DefaultAtlasSize, false)

	if got := draws[3].AtlasPos; got != (IVec2{30, 0}) {
		t.Errorf("draws[3].AtlasPos = %v, want (30,0)", got)
	}
	if !draws[0].Empty() || !draws[2].Empty() {
		t.Error("empty draws became non-empty")
	}
}

func TestPackAtlasHeightSorted(t *testing.T) {
	draws := drawsOf(IVec2{20, 10}, IVec2{20, 90}, IVec2{20, 50})
	packAtlas(draws, DefaultAtlasSize, true)

	want := []IVec2{{40, 0}, {0, 0}, {20, 0}}
	for n, w := range want {
		if got := draws[n].AtlasPos; got != w {
			t.Errorf("draws[%d].AtlasPos = %v, want %v", n, got, w)
		}
	}
}

func TestPackAtlasNoOverlap(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 20; round++ {
		sizes := make([]IVec2, 40)
		for n := range sizes {
			sizes[n] = IVec2{1 + rng.IntN(200), 1 + rng.IntN(200)}
		}
		draws := drawsOf(sizes...)
		sortByHeight := round%2 == 1
		size := packAtlas(draws, DefaultAtlasSize, sortByHeight)

		if size.X > MaxAtlasSize.X || size.Y > MaxAtlasSize.Y {
			t.Fatalf("round %d: size = %v exceeds %v", round, size, MaxAtlasSize)
		}
		slots := make([]IRect, len(draws))
		for n, d := range draws {
			if d.Empty() {
				t.Fatalf("round %d: draws[%d] dropped", round, n)
			}
			slots[n] = IRect{Min: d.AtlasPos, Max: d.AtlasPos.Add(d.WorldRect.Size())}
			if slots[n].Min.X < 0 || slots[n].Min.Y < 0 || slots[n].Max.X > size.X || slots[n].Max.Y > size.Y {
				t.Fatalf("round %d: slot %v outside atlas %v", round, slots[n], size)
			}
		}
		for i := range slots {
			for j := i + 1; j < len(slots); j++ {
				if slots[i].Overlaps(slots[j]) {
					t.Fatalf("round %d: slots %d %v and %d %v overlap", round, i, slots[i], j, slots[j])
				}
			}
		}
	}
}
