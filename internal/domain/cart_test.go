package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"govitrine/internal/domain"
)

func TestMergeLine_IncrementsExistingKey(t *testing.T) {
	camiseta := domain.Product{ID: "p1", Name: "Camiseta", Price: 50}
	lines := []domain.CartLine{
		{Product: camiseta, Color: "Preto", Size: "M", Quantity: 1},
	}

	result := domain.MergeLine(lines, camiseta, "Preto", "M")

	assert.Len(t, result, 1)
	assert.Equal(t, 2, result[0].Quantity)
	// A lista original não pode ser alterada
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestMergeLine_AppendsNewKey(t *testing.T) {
	camiseta := domain.Product{ID: "p1", Name: "Camiseta", Price: 50}
	lines := []domain.CartLine{
		{Product: camiseta, Color: "Preto", Size: "M", Quantity: 2},
	}

	// Mesma peça, tamanho diferente: vira linha nova, não mescla
	result := domain.MergeLine(lines, camiseta, "Preto", "G")

	assert.Len(t, result, 2)
	assert.Equal(t, 2, result[0].Quantity)
	assert.Equal(t, 1, result[1].Quantity)
	assert.Equal(t, "G", result[1].Size)
}

func TestQuantityInCart_AbsentLineIsZero(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: "p1"}, Color: "Preto", Size: "M", Quantity: 3},
	}

	assert.Equal(t, 3, domain.QuantityInCart(lines, "p1", "Preto", "M"))
	assert.Equal(t, 0, domain.QuantityInCart(lines, "p1", "Preto", "G"))
	assert.Equal(t, 0, domain.QuantityInCart(nil, "p1", "Preto", "M"))
}

func TestRemoveLineAt(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: "p1"}, Quantity: 1},
		{Product: domain.Product{ID: "p2"}, Quantity: 2},
		{Product: domain.Product{ID: "p3"}, Quantity: 3},
	}

	result := domain.RemoveLineAt(lines, 1)

	assert.Len(t, result, 2)
	assert.Equal(t, "p1", result[0].Product.ID)
	assert.Equal(t, "p3", result[1].Product.ID)
}

func TestRemoveLineAt_OutOfBoundsKeepsList(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: "p1"}, Quantity: 1},
	}

	assert.Equal(t, lines, domain.RemoveLineAt(lines, -1))
	assert.Equal(t, lines, domain.RemoveLineAt(lines, 1))
	assert.Equal(t, lines, domain.RemoveLineAt(lines, 42))
}

func TestSnapshotItems_FreezesEffectivePrice(t *testing.T) {
	lines := []domain.CartLine{
		{
			Product:  domain.Product{ID: "p1", Name: "Vestido", Price: 200, PromoPrice: 150, IsPromotion: true},
			Color:    "Azul",
			Size:     "M",
			Quantity: 2,
		},
		{
			Product:  domain.Product{ID: "p2", Name: "Cinto", Price: 40},
			Color:    "Preto",
			Size:     "U",
			Quantity: 1,
		},
	}

	items := domain.SnapshotItems(lines)

	assert.Len(t, items, 2)
	assert.Equal(t, "Vestido", items[0].ProductName)
	assert.Equal(t, 150.0, items[0].UnitPrice)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 40.0, items[1].UnitPrice)
}
