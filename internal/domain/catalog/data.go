// internal/domain/catalog/data.go
package catalog

import "github.com/shopspring/decimal"

const placeholderImage = "/placeholder.svg"

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// defaultProducts is the static storefront catalog
func defaultProducts() []Product {
	return []Product{
		// Men
		{
			ID:          "m1",
			Name:        "Executive Leather Portfolio",
			Description: "A sophisticated leather portfolio for the modern professional. Features multiple compartments and premium craftsmanship.",
			Price:       price("129.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderMen,
			Category:    CategoryPortfolios,
			Featured:    true,
			Stock:       15,
			Colors:      []string{"Black", "Brown", "Navy"},
		},
		{
			ID:          "m2",
			Name:        "Chronograph Watch",
			Description: "Precision timekeeping with elegant design. Water-resistant up to 50m with premium stainless steel construction.",
			Price:       price("349.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderMen,
			Category:    CategoryWatches,
			BestSeller:  true,
			Stock:       8,
			Colors:      []string{"Silver", "Gold", "Black"},
		},
		{
			ID:          "m3",
			Name:        "Italian Leather Belt",
			Description: "Handcrafted Italian leather belt with brushed metal buckle. Perfect for formal and business casual attire.",
			Price:       price("89.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderMen,
			Category:    CategoryPantsBelts,
			Stock:       25,
			Colors:      []string{"Black", "Brown", "Tan"},
			Sizes:       []string{"32", "34", "36", "38", "40", "42"},
		},
		{
			ID:          "m4",
			Name:        "Bifold Wallet",
			Description: "Slim profile bifold wallet made from genuine leather. Features multiple card slots and a secure money clip.",
			Price:       price("79.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderMen,
			Category:    CategoryLeatherWallets,
			Stock:       20,
			Colors:      []string{"Black", "Brown", "Oxblood"},
		},
		{
			ID:          "m5",
			Name:        "Canvas Backpack",
			Description: "Durable canvas backpack with leather trim. Features laptop compartment and multiple organizational pockets.",
			Price:       price("159.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderMen,
			Category:    CategoryBackpacks,
			New:         true,
			Stock:       12,
			Colors:      []string{"Black", "Navy", "Olive"},
		},
		{
			ID:          "m6",
			Name:        "Executive Laptop Bag",
			Description: "Professional laptop bag with padded compartment for laptops up to 15\". Includes document pockets and organizer.",
			Price:       price("189.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderMen,
			Category:    CategoryComputerBags,
			Featured:    true,
			Stock:       10,
			Colors:      []string{"Black", "Brown"},
		},

		// Women
		{
			ID:          "w1",
			Name:        "Designer Tote Bag",
			Description: "Elegant tote bag with custom hardware and premium materials. Spacious interior with secure zipper closure.",
			Price:       price("249.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderWomen,
			Category:    CategoryBagsPurses,
			Featured:    true,
			Stock:       8,
			Colors:      []string{"Black", "Cream", "Burgundy"},
		},
		{
			ID:          "w2",
			Name:        "Premium Lipstick Set",
			Description: "Long-lasting, hydrating lipsticks in four complementary shades. Cruelty-free and made with natural ingredients.",
			Price:       price("79.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderWomen,
			Category:    CategoryCosmetics,
			BestSeller:  true,
			Stock:       20,
			Colors:      []string{"Ruby", "Blush", "Coral", "Mauve"},
		},
		{
			ID:          "w3",
			Name:        "Hydrating Facial Serum",
			Description: "Advanced hydration serum with hyaluronic acid and vitamin C. Brightens and nourishes all skin types.",
			Price:       price("89.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderWomen,
			Category:    CategoryBeautySkincare,
			New:         true,
			Stock:       15,
		},
		{
			ID:          "w4",
			Name:        "Gold Chain Necklace",
			Description: "Elegant 18K gold-plated chain necklace with adjustable length. Perfect for everyday wear or special occasions.",
			Price:       price("129.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderWomen,
			Category:    CategoryJewelry,
			Featured:    true,
			Stock:       7,
		},
		{
			ID:          "w5",
			Name:        "Clutch Purse",
			Description: "Sophisticated evening clutch with detachable chain strap. Features interior card slots and zipper pocket.",
			Price:       price("119.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderWomen,
			Category:    CategoryBagsPurses,
			Stock:       12,
			Colors:      []string{"Black", "Gold", "Silver"},
		},
		{
			ID:          "w6",
			Name:        "Pearl Earrings",
			Description: "Classic freshwater pearl earrings with sterling silver posts. Timeless elegance for any occasion.",
			Price:       price("99.99"),
			Images:      []string{placeholderImage},
			Gender:      GenderWomen,
			Category:    CategoryJewelry,
			BestSeller:  true,
			Stock:       18,
		},
	}
}
