package logging

import "testing"

func TestGetBeforeInitReturnsNopLogger(t *testing.T) {
	mu.Lock()
	base = nil
	loggers = map[Category]*Logger{}
	mu.Unlock()

	l := Get(CategoryBoot)
	l.Infof("should not panic even without Init")
}

func TestGetCachesPerCategory(t *testing.T) {
	if err := Init(false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	a := Get(CategoryExecutor)
	b := Get(CategoryExecutor)
	if a != b {
		t.Fatal("expected Get to return the same *Logger for a repeated category")
	}
	c := Get(CategoryRender)
	if a == c {
		t.Fatal("expected distinct categories to get distinct loggers")
	}
}

func TestInitVerboseDoesNotError(t *testing.T) {
	if err := Init(true); err != nil {
		t.Fatalf("Init(true): %v", err)
	}
	Sync()
}
