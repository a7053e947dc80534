package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

var (
	_ ports.CartBackend      = (*Client)(nil)
	_ ports.AffiliateBackend = (*Client)(nil)
)

type wireImage struct {
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

type wireProduct struct {
	ID            flexID      `json:"id"`
	Name          string      `json:"name"`
	Price         float64     `json:"price"`
	Image         string      `json:"image"`
	Images        []wireImage `json:"images"`
	ProductImages []wireImage `json:"product_images"`
}

// primaryImage prefers an explicit image, then the primary gallery image,
// then the first one.
func (p *wireProduct) primaryImage() string {
	if p.Image != "" {
		return p.Image
	}
	images := p.Images
	if len(images) == 0 {
		images = p.ProductImages
	}
	for _, img := range images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	if len(images) > 0 {
		return images[0].ImageURL
	}
	return ""
}

type wireCartItem struct {
	ID          flexID       `json:"id"`
	ProductID   flexID       `json:"product_id"`
	Quantity    int          `json:"quantity"`
	AffiliateID flexID       `json:"affiliate_id"`
	Product     *wireProduct `json:"product"`
}

func (w wireCartItem) toDomain() domain.CartItem {
	item := domain.CartItem{
		ID:          string(w.ID),
		ProductID:   string(w.ProductID),
		Quantity:    w.Quantity,
		AffiliateID: string(w.AffiliateID),
	}
	if p := w.Product; p != nil {
		if item.ProductID == "" {
			item.ProductID = string(p.ID)
		}
		item.Name = p.Name
		item.Price = p.Price
		item.Image = p.primaryImage()
	}
	return item
}

// FetchCart returns the authenticated cart's lines with their product
// snapshot flattened in.
func (c *Client) FetchCart(ctx context.Context, token string) ([]domain.CartItem, error) {
	var resp struct {
		Items []wireCartItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/cart/", token, nil, &resp, nil); err != nil {
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(resp.Items))
	for _, w := range resp.Items {
		items = append(items, w.toDomain())
	}
	return items, nil
}

func (c *Client) AddItem(ctx context.Context, token string, line ports.NewCartLine) error {
	req := struct {
		ProductID   string `json:"product_id"`
		Quantity    int    `json:"quantity"`
		AffiliateID string `json:"affiliate_id,omitempty"`
	}{line.ProductID, line.Quantity, line.AffiliateID}
	return c.do(ctx, http.MethodPost, "/cart/items", token, req, nil, nil)
}

func (c *Client) UpdateItem(ctx context.Context, token, lineID string, quantity int) error {
	req := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(lineID), token, req, nil, nil)
}

func (c *Client) RemoveItem(ctx context.Context, token, productID string) error {
	req := map[string]string{"productId": productID}
	return c.do(ctx, http.MethodDelete, "/cart/items", token, req, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/all", token, nil, nil, nil)
}

// TrackClick reports an affiliate link visit. token may be empty.
func (c *Client) TrackClick(ctx context.Context, token, code string) (string, error) {
	var resp struct {
		ProductID flexID `json:"productId"`
	}
	if err := c.do(ctx, http.MethodPost, "/affiliate/track-click", token, map[string]string{"code": code}, &resp, nil); err != nil {
		return "", err
	}
	return string(resp.ProductID), nil
}
