package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostString(t *testing.T) {
	p := &post{
		Slug:  "hello-world",
		Title: "Hello World",
		Date:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Tags:  []tag{"Reflection", "FSE"},
	}
	assert.Equal(t, "hello-world (2024-02-01, Reflection, FSE): Hello World", p.String())
	assert.Equal(t, "Reflection,FSE", p.JoinedTags())
}
