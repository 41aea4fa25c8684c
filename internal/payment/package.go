package payment

import "fmt"

// Package is a purchasable bundle of credits with a display price and label.
type Package struct {
	Amount int    `json:"amount"`
	Price  string `json:"price"`
	Label  string `json:"label"`
}

var catalog = []Package{
	{Amount: 5, Price: "Rp 3.000", Label: "Starter"},
	{Amount: 10, Price: "Rp 5.000", Label: "Popular"},
	{Amount: 20, Price: "Rp 10.000", Label: "Pro"},
}

// Catalog returns the fixed package catalog.
func Catalog() []Package {
	out := make([]Package, len(catalog))
	copy(out, catalog)
	return out
}

// FindPackage looks a package up by its credit amount, the catalog's natural key.
func FindPackage(amount int) (Package, bool) {
	for _, pkg := range catalog {
		if pkg.Amount == amount {
			return pkg, true
		}
	}
	return Package{}, false
}

// QRCodeURL returns the external QR image used on the mock QRIS step. The
// rendered image is opaque presentation data.
func QRCodeURL(pkg Package) string {
	return fmt.Sprintf("https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=PixForge-%d", pkg.Amount)
}
