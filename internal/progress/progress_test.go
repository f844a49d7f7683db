package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_SmallTotalSilent(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{w: &buf, label: "Syncing", total: 2, isTTY: true}
	p.Increment()
	p.Print()
	p.Done()
	assert.Empty(t, buf.String())
}

func TestProgress_NonTTYSilent(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{w: &buf, label: "Syncing", total: 10}
	p.Increment()
	p.Print()
	p.Done()
	assert.Empty(t, buf.String())
}

func TestProgress_Print(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{w: &buf, label: "Pulling", total: 10, isTTY: true}
	for range 5 {
		p.Increment()
	}
	p.Print()
	assert.Equal(t, "\rPulling... 5/10 (50%)", buf.String())

	buf.Reset()
	p.Done()
	assert.Equal(t, "\r"+string(bytes.Repeat([]byte(" "), len("Pulling... 5/10 (50%)")))+"\r", buf.String())
}

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := &Spinner{w: &buf, label: "Listing", isTTY: true, frames: []string{"-", "+"}}
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
	assert.Contains(t, buf.String(), "- Listing...")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\r")))
}

func TestSpinner_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	s := &Spinner{w: &buf, label: "Listing", frames: []string{"-"}}
	s.Start()
	s.Stop()
	assert.Empty(t, buf.String())
}
