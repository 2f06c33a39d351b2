package mplwgpu

import "testing"

func TestAppendRects(t *testing.T) {
	s := NewScene()
	s.AppendRects([]RectCommand{
		{X: 1, Y: 2, W: 3, H: 4, R: 1, A: 1, CornerRadius: 2, StrokeWidth: 1, Z: 0.5},
		{X: 5, Y: 6, W: 7, H: 8, G: 1, A: 1},
	})

	got := s.Instances()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].AnchorA != [4]float32{1, 2, 0.5, 2} {
		t.Errorf("AnchorA = %v", got[0].AnchorA)
	}
	if got[1].Color != [4]float32{0, 1, 0, 1} {
		t.Errorf("Color = %v", got[1].Color)
	}
}

func TestAppendCirclesKindSelection(t *testing.T) {
	s := NewScene()
	s.AppendCircles([]CircleCommand{
		{CX: 1, CY: 2, Radius: 3, A: 1, Kind: -1, StrokeWidth: 2},
		{CX: 4, CY: 5, Radius: 6, A: 1, Kind: int32(MarkerCross)},
	})

	got := s.Instances()
	if got[0].Tag() != PrimCircle {
		t.Errorf("kind -1 tag = %v, want circle", got[0].Tag())
	}
	if got[0].AnchorB[3] != 2 {
		t.Errorf("stroke width = %v, want 2", got[0].AnchorB[3])
	}
	if got[1].Tag() != MarkerCross.Tag() {
		t.Errorf("kind cross tag = %v, want %v", got[1].Tag(), MarkerCross.Tag())
	}
}

func TestAppendLinesAndTriangles(t *testing.T) {
	s := NewScene()
	s.AppendLines([]LineCommand{
		{X1: 0, Y1: 0, X2: 10, Y2: 10, A: 1, Width: 4, DashLen: 6, GapLen: 3},
	})
	s.AppendTriangles([]TriangleCommand{
		{P0: [3]float32{0, 0, 0}, P1: [3]float32{1, 0, 0}, P2: [3]float32{0, 1, 0}, A: 1, Lit: true},
	})

	got := s.Instances()
	if got[0].AnchorA[3] != 2 {
		t.Errorf("half thickness = %v, want 2", got[0].AnchorA[3])
	}
	if got[0].Params != [4]float32{PrimLine, 6, 3, 0} {
		t.Errorf("line params = %v", got[0].Params)
	}
	if got[1].Tag() != PrimTriangleLit {
		t.Errorf("triangle tag = %v, want lit", got[1].Tag())
	}
}

func TestAppendTexts(t *testing.T) {
	s := NewScene()
	s.AppendTexts([]TextCommand{
		{Text: "label", X: 10, Y: 20, Size: 12, A: 1},
	})

	texts := s.Texts()
	if len(texts) != 1 {
		t.Fatalf("len = %d, want 1", len(texts))
	}
	if texts[0].Text != "label" || texts[0].Size != 12 {
		t.Errorf("run = %+v", texts[0])
	}
}
