package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "[Austin, TX] SafePlace", want: "SafePlace"},
		{in: "SafePlace - Shelters.org", want: "SafePlace"},
		{in: "[Austin, TX] SafePlace - Shelters.org", want: "SafePlace"},
		{in: "Hope Alliance", want: "Hope Alliance"},
		{in: "  ", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTitle(tt.in), tt.in)
	}
}

func TestResultItem_Details(t *testing.T) {
	item := ResultItem{
		Title:   "[Austin, TX] SafePlace - Shelters.org",
		Content: "Emergency shelter. Call (512) 267-7233 or visit 1515 Grove Blvd, Austin, TX 78741 today.",
	}

	assert.Equal(t, "SafePlace", item.DisplayName())
	assert.Equal(t, "(512) 267-7233", item.Phone())
	assert.Equal(t, "1515 Grove Blvd, Austin, TX 78741", item.Address())
}

func TestResultItem_Placeholders(t *testing.T) {
	var item ResultItem

	assert.Equal(t, PlaceholderName, item.DisplayName())
	assert.Equal(t, NotAvailable, item.PhoneOrPlaceholder())
	assert.Equal(t, NotAvailable, item.AddressOrPlaceholder())
}

func TestResultItem_PhoneFromTitle(t *testing.T) {
	item := ResultItem{Title: "Hotline 1-800-799-7233", Content: "no digits here"}

	assert.Equal(t, "1-800-799-7233", item.Phone())
}
