package sale

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Erros de validação dos dados de precificação
var (
	ErrInvalidInput = errors.New("dados de precificação inválidos")
)

var (
	oneHundred = decimal.NewFromInt(100)
)

// CartLine representa uma linha do carrinho para cálculo de preços
type CartLine struct {
	UnitPrice       decimal.Decimal // Preço unitário do produto
	Quantity        int             // Quantidade (inteiro positivo)
	DiscountPercent decimal.Decimal // Desconto da linha em percentual [0,100]
}

// Breakdown é o resultado do cálculo de preços de um documento.
// Todos os valores monetários já estão arredondados para 2 casas decimais;
// o arredondamento acontece uma única vez, na finalização do cálculo.
type Breakdown struct {
	LineTotals      []decimal.Decimal // Total de cada linha, na ordem de entrada
	Subtotal        decimal.Decimal   // Soma dos totais de linha (já líquido dos descontos de linha)
	DiscountPercent decimal.Decimal   // Desconto do documento em percentual
	DiscountAmount  decimal.Decimal   // Valor do desconto do documento
	TaxableAmount   decimal.Decimal   // Base de cálculo do imposto
	TaxPercent      decimal.Decimal   // Alíquota do imposto em percentual
	TaxAmount       decimal.Decimal   // Valor do imposto
	Total           decimal.Decimal   // Valor final do documento
}

// Calculate calcula o detalhamento de preços de um carrinho.
//
// A ordem das etapas é fixa: total de cada linha com desconto de linha,
// subtotal, desconto do documento sobre o subtotal, base tributável,
// imposto sobre a base e total. O desconto de linha não é reportado como
// desconto no nível do documento; o subtotal já nasce líquido dele.
//
// A aritmética intermediária é feita sem arredondamento; cada componente
// reportado é arredondado (2 casas, meio para cima) no momento em que é
// fixado, e os componentes derivados (base tributável e total) são
// calculados a partir dos valores já arredondados, de modo que
// Total = Subtotal - DiscountAmount + TaxAmount vale exatamente.
func Calculate(lines []CartLine, documentDiscountPercent, taxPercent decimal.Decimal) (*Breakdown, error) {
	if err := validatePercent("desconto do documento", documentDiscountPercent); err != nil {
		return nil, err
	}
	if err := validatePercent("imposto", taxPercent); err != nil {
		return nil, err
	}

	lineTotals := make([]decimal.Decimal, 0, len(lines))
	subtotal := decimal.Zero

	for i, line := range lines {
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: preço unitário negativo na linha %d", ErrInvalidInput, i+1)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantidade não positiva na linha %d", ErrInvalidInput, i+1)
		}
		if err := validatePercent(fmt.Sprintf("desconto da linha %d", i+1), line.DiscountPercent); err != nil {
			return nil, err
		}

		gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lineTotal := gross.Sub(gross.Mul(line.DiscountPercent).Div(oneHundred)).Round(2)

		lineTotals = append(lineTotals, lineTotal)
		subtotal = subtotal.Add(lineTotal)
	}

	discountAmount := subtotal.Mul(documentDiscountPercent).Div(oneHundred).Round(2)
	taxableAmount := subtotal.Sub(discountAmount)
	taxAmount := taxableAmount.Mul(taxPercent).Div(oneHundred).Round(2)
	total := taxableAmount.Add(taxAmount)

	return &Breakdown{
		LineTotals:      lineTotals,
		Subtotal:        subtotal,
		DiscountPercent: documentDiscountPercent,
		DiscountAmount:  discountAmount,
		TaxableAmount:   taxableAmount,
		TaxPercent:      taxPercent,
		TaxAmount:       taxAmount,
		Total:           total,
	}, nil
}

// validatePercent valida um percentual no intervalo [0,100]
func validatePercent(name string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: percentual de %s fora do intervalo [0,100]", ErrInvalidInput, name)
	}
	return nil
}
