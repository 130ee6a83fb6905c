package stores

type gogResponse struct {
	Products []gogProduct `json:"products"`
}

type gogProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	ProductType string   `json:"productType"`
	StoreLink   string   `json:"storeLink"`
	Price       gogPrice `json:"price"`
}

type gogPrice struct {
	Final    string `json:"final"`
	Base     string `json:"base"`
	Discount string `json:"discount"`
}
