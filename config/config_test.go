package config

import "testing"

type nopLogger struct{}

func (nopLogger) SetLevel(int8)                          {}
func (nopLogger) Debug(msg string, args ...interface{})   {}
func (nopLogger) Info(msg string, args ...interface{})    {}
func (nopLogger) Warning(msg string, args ...interface{}) {}
func (nopLogger) Error(msg string, args ...interface{})   {}
func (nopLogger) Fatal(msg string, args ...interface{})   {}

func TestValidateAppliesDefaults(t *testing.T) {
	c := &Config{Logger: nopLogger{}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Height != defaultHeight || c.Width != defaultWidth {
		t.Fatalf("shape = %dx%d, want %dx%d", c.Height, c.Width, defaultHeight, defaultWidth)
	}
	if c.NSubchannels != defaultNSubchannels {
		t.Fatalf("NSubchannels = %d, want %d", c.NSubchannels, defaultNSubchannels)
	}
}

func TestUpdateSetsFields(t *testing.T) {
	c := &Config{Logger: nopLogger{}}
	c.Update(map[string]string{
		KeyNSubchannels: "32",
		KeyNormalize:    "true",
	})
	if c.NSubchannels != 32 {
		t.Fatalf("NSubchannels = %d, want 32", c.NSubchannels)
	}
	if !c.Normalize {
		t.Fatalf("Normalize = false, want true")
	}
}
