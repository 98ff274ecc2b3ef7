package repoargs

type CustomerCreate struct {
	Name      string
	Address   string
	Phone     string
	Email     string
	CreatedBy string
}

// CustomerUpdateFields частичное обновление: nil-поле означает "без изменений",
// а не очистку значения.
type CustomerUpdateFields struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
}
