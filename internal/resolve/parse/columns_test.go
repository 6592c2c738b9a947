package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ColumnMapping
	}{
		{
			name:    "StandardEnglish",
			headers: []string{"Product", "Article Number", "Quantity"},
			want:    ColumnMapping{NameKey: "Product", CodeKey: "Article Number", QuantityKey: "Quantity"},
		},
		{
			name:    "German",
			headers: []string{"Artikel", "Artikelnummer", "Menge"},
			want:    ColumnMapping{NameKey: "Artikel", CodeKey: "Artikelnummer", QuantityKey: "Menge"},
		},
		{
			name:    "WeakFallback",
			headers: []string{"Description", "ID", "Count"},
			want:    ColumnMapping{NameKey: "Description", CodeKey: "ID", QuantityKey: "Count"},
		},
		{
			name:    "StrongBeatsEarlierWeak",
			headers: []string{"Description", "Product Name", "Qty"},
			want:    ColumnMapping{NameKey: "Product Name", QuantityKey: "Qty"},
		},
		{
			name:    "FirstStrongWins",
			headers: []string{"Product", "Item"},
			want:    ColumnMapping{NameKey: "Product"},
		},
		{
			name:    "NothingDetected",
			headers: []string{"Foo", "Bar"},
			want:    ColumnMapping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectColumns(tt.headers))
		})
	}
}
