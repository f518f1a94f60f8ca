package catalog

type Product struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Price        int64  `json:"price"`
	CountInStock int    `json:"countInStock"`
	Rating       int    `json:"rating"`
}

type Review struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// ReviewWithSentiment is a review decorated with a sentiment label for the
// product detail page.
type ReviewWithSentiment struct {
	ID             int64   `json:"id"`
	Rating         int     `json:"rating"`
	Comment        string  `json:"comment"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

type ProductDetail struct {
	Product
	Reviews []ReviewWithSentiment `json:"reviews"`
}
