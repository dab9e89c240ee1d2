package service

import "testing"

func TestCryptoDraw(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d, err := cryptoDraw()
		if err != nil {
			t.Fatalf("cryptoDraw: %v", err)
		}
		if d < 0 || d >= 1 {
			t.Fatalf("draw %v out of [0,1)", d)
		}
	}
}
