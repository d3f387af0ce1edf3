package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "training.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid rows pooled by category", func(t *testing.T) {
		path := writeCorpusFile(t, "Signals,Type\n"+
			"great mobile app,Positive\n"+
			"fees are terrible,Negative\n"+
			"branch hours changed,Neutral\n"+
			"asdf qwerty zzz,Gibberish\n"+
			"another happy customer,Positive\n")

		c, err := Load(path, 1, logger.Nop())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := c.PoolSize(CategoryPositive); got != 2 {
			t.Errorf("positive pool = %d, want 2", got)
		}
		if got := c.PoolSize(CategoryGibberish); got != 1 {
			t.Errorf("gibberish pool = %d, want 1", got)
		}
	})

	t.Run("unknown labels and empty text skipped", func(t *testing.T) {
		path := writeCorpusFile(t, "Signals,Type\n"+
			"valid row,Positive\n"+
			"bad label,Sideways\n"+
			",Negative\n")

		c, err := Load(path, 1, logger.Nop())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		total := 0
		for _, cat := range Categories {
			total += c.PoolSize(cat)
		}
		if total != 1 {
			t.Errorf("total examples = %d, want 1", total)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), 1, logger.Nop()); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("zero usable rows is an error", func(t *testing.T) {
		path := writeCorpusFile(t, "Signals,Type\n,Positive\nx,Bogus\n")
		if _, err := Load(path, 1, logger.Nop()); err == nil {
			t.Error("expected error for empty corpus")
		}
	})

	t.Run("unsupported extension is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "training.xlsx")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, 1, logger.Nop()); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestSample(t *testing.T) {
	path := writeCorpusFile(t, "Signals,Type\n"+
		"one,Positive\ntwo,Positive\nthree,Positive\nfour,Negative\n")

	c, err := Load(path, 42, logger.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	t.Run("without replacement", func(t *testing.T) {
		got := c.Sample(CategoryPositive, 3)
		if len(got) != 3 {
			t.Fatalf("sample size = %d, want 3", len(got))
		}
		seen := map[string]bool{}
		for _, s := range got {
			if seen[s] {
				t.Errorf("duplicate sample %q", s)
			}
			seen[s] = true
		}
	})

	t.Run("capped at pool size", func(t *testing.T) {
		if got := c.Sample(CategoryNegative, 10); len(got) != 1 {
			t.Errorf("sample size = %d, want 1", len(got))
		}
	})

	t.Run("empty pool yields empty slice", func(t *testing.T) {
		if got := c.Sample(CategoryGibberish, 2); len(got) != 0 {
			t.Errorf("sample size = %d, want 0", len(got))
		}
	})
}
