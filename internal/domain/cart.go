package domain

// CartLine representa uma linha do carrinho: um snapshot do produto mais a
// cor, o tamanho e a quantidade escolhidos.
// Invariante: linhas com o mesmo (ProductID, Color, Size) são mescladas,
// nunca duplicadas.
type CartLine struct {
	Product  Product `json:"product"`
	Color    string  `json:"color"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
}

// QuantityInCart retorna a quantidade já presente no carrinho para a chave
// exata (productID, color, size). Linha ausente conta como zero.
func QuantityInCart(lines []CartLine, productID, color, size string) int {
	for _, l := range lines {
		if l.Product.ID == productID && l.Color == color && l.Size == size {
			return l.Quantity
		}
	}
	return 0
}

// MergeLine incrementa a quantidade da linha com a mesma chave
// (productID, color, size), ou acrescenta uma linha nova com quantidade 1.
// Função pura: retorna uma nova lista, sem alterar a original.
func MergeLine(lines []CartLine, product Product, color, size string) []CartLine {
	result := make([]CartLine, len(lines))
	copy(result, lines)

	for i, l := range result {
		if l.Product.ID == product.ID && l.Color == color && l.Size == size {
			result[i].Quantity++
			return result
		}
	}

	return append(result, CartLine{
		Product:  product,
		Color:    color,
		Size:     size,
		Quantity: 1,
	})
}

// RemoveLineAt remove a linha no índice posicional informado.
// Índice fora dos limites deixa a lista inalterada.
// Não há efeito colateral no estoque: o estoque só é consumido no checkout.
func RemoveLineAt(lines []CartLine, index int) []CartLine {
	if index < 0 || index >= len(lines) {
		return lines
	}
	result := make([]CartLine, 0, len(lines)-1)
	result = append(result, lines[:index]...)
	return append(result, lines[index+1:]...)
}
