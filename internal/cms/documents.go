package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coteroyale/storefront/internal/models"
)

type richTextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type fragranceData struct {
	Title       []richTextBlock `json:"title"`
	Price       *int64          `json:"price"`
	BottleImage struct {
		URL string `json:"url"`
	} `json:"bottle_image"`
}

type settingsData struct {
	ContactFormSettings []models.ContactSettings `json:"contact_form_settings"`
}

// asText joins the text of rich text blocks with a space.
func asText(blocks []richTextBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, " ")
}

func toProduct(d document) (models.ProductRecord, error) {
	p := models.ProductRecord{
		ID:   d.ID,
		UID:  d.UID,
		Type: d.Type,
		Lang: d.Lang,
	}
	if d.Type != models.ProductTypeFragrance || len(d.Data) == 0 {
		return p, nil
	}

	var data fragranceData
	if err := json.Unmarshal(d.Data, &data); err != nil {
		return p, fmt.Errorf("decode fragrance %s: %w", d.ID, err)
	}
	p.Title = asText(data.Title)
	if data.Price != nil {
		p.Price = *data.Price
	}
	p.ImageURL = data.BottleImage.URL
	return p, nil
}

func toProducts(docs []document) ([]models.ProductRecord, error) {
	out := make([]models.ProductRecord, 0, len(docs))
	for _, d := range docs {
		p, err := toProduct(d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ContactSettings reads the contact form block of the settings singleton for lang.
// A settings document without a contact block yields zero settings.
func (c *Client) ContactSettings(ctx context.Context, lang string) (models.ContactSettings, error) {
	docs, err := c.query(ctx, lang, `at(document.type, "settings")`)
	if err != nil {
		return models.ContactSettings{}, err
	}
	if len(docs) == 0 {
		return models.ContactSettings{}, fmt.Errorf("settings for %s: %w", lang, ErrDocumentNotFound)
	}

	var data settingsData
	if err := json.Unmarshal(docs[0].Data, &data); err != nil {
		return models.ContactSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	if len(data.ContactFormSettings) == 0 {
		return models.ContactSettings{}, nil
	}
	return data.ContactFormSettings[0], nil
}

// ProductsByIDs fetches documents by id in one query. Ids without a document are absent
// from the result; documents of other types are returned with their type so callers can
// reject them.
func (c *Client) ProductsByIDs(ctx context.Context, ids []string, lang string) ([]models.ProductRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = quote(id)
	}

	docs, err := c.query(ctx, lang, fmt.Sprintf("in(document.id, [%s])", strings.Join(quoted, ", ")))
	if err != nil {
		return nil, err
	}
	return toProducts(docs)
}

// SearchProducts runs a full-text search over fragrances.
func (c *Client) SearchProducts(ctx context.Context, query, lang string) ([]models.ProductRecord, error) {
	docs, err := c.query(ctx, lang,
		fmt.Sprintf("at(document.type, %s)", quote(models.ProductTypeFragrance)),
		fmt.Sprintf("fulltext(document, %s)", quote(query)),
	)
	if err != nil {
		return nil, err
	}
	return toProducts(docs)
}

// ProductsByType lists every document of one type.
func (c *Client) ProductsByType(ctx context.Context, docType, lang string) ([]models.ProductRecord, error) {
	docs, err := c.query(ctx, lang, fmt.Sprintf("at(document.type, %s)", quote(docType)))
	if err != nil {
		return nil, err
	}
	return toProducts(docs)
}
