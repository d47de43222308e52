package model

// Product is a catalog item.
type Product struct {
	ProductID     string       `json:"product_id"`
	ProductName   string       `json:"product_name"`
	ProductPrice  float64      `json:"product_price"`
	ProductImages []Attachment `json:"product_images"`
	AuditInfo
}

func (p *Product) AggregateID() string { return p.ProductID }
func (p *Product) Audit() *AuditInfo   { return &p.AuditInfo }

// UpdateDetails copies the mutable fields from other.
func (p *Product) UpdateDetails(other Product) {
	p.ProductName = other.ProductName
	p.ProductPrice = other.ProductPrice
	p.ProductImages = other.ProductImages
}
