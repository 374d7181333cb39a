package model

// MerchantMapping is a learned merchant-to-category hint, built up as the
// user corrects categorization. Owned rows, so they travel with the user
// during identity reconciliation.
type MerchantMapping struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	MerchantName string `json:"merchant_name"`
	CategoryID   int64  `json:"category_id"`
}

func (MerchantMapping) TableName() string { return "merchant_mappings" }
