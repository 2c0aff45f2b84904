package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cupoftea4/retail-pos/models"
)

var priceNumber = regexp.MustCompile(`[\d.]+`)

// ScrapeCatalog fetches the catalog page and extracts one record per
// product card inside #produtos-lista. Cards missing a name, price or
// data-qtd quantity are skipped. A page without any usable card is an
// ErrExternalSource.
func ScrapeCatalog(ctx context.Context, client *http.Client, url string) ([]models.ProductRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w: %w", url, models.ErrExternalSource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetching %s: status %d: %w", url, resp.StatusCode, models.ErrExternalSource)
	}

	records, err := ParseCatalog(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return records, nil
}

func ParseCatalog(r io.Reader) ([]models.ProductRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrExternalSource, err)
	}

	list := find(doc, func(n *html.Node) bool { return attr(n, "id") == "produtos-lista" })
	if list == nil {
		return nil, fmt.Errorf("no #produtos-lista element: %w", models.ErrExternalSource)
	}

	var records []models.ProductRecord
	for _, card := range findAll(list, func(n *html.Node) bool { return hasClass(n, "product-card") }) {
		if rec, ok := parseCard(card); ok {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no products found: %w", models.ErrExternalSource)
	}
	return records, nil
}

func parseCard(card *html.Node) (models.ProductRecord, bool) {
	nameTag := find(card, func(n *html.Node) bool { return n.DataAtom == atom.H5 && hasClass(n, "card-title") })
	priceTag := find(card, func(n *html.Node) bool { return n.DataAtom == atom.P && hasClass(n, "card-price") })
	qtyTag := find(card, func(n *html.Node) bool { return n.DataAtom == atom.P && hasAttr(n, "data-qtd") })
	if nameTag == nil || priceTag == nil || qtyTag == nil {
		return models.ProductRecord{}, false
	}

	name := text(nameTag)
	if name == "" {
		return models.ProductRecord{}, false
	}

	raw := attr(priceTag, "data-preco")
	if raw == "" {
		raw = text(priceTag)
	}
	raw = strings.NewReplacer("R$", "", "\u00a0", "", ",", ".").Replace(raw)
	match := priceNumber.FindString(strings.TrimSpace(raw))
	price, err := decimal.NewFromString(match)
	if err != nil || price.IsNegative() {
		return models.ProductRecord{}, false
	}

	qty, err := strconv.Atoi(strings.TrimSpace(attr(qtyTag, "data-qtd")))
	if err != nil || qty < 0 {
		return models.ProductRecord{}, false
	}
	return models.ProductRecord{Name: name, Quantity: qty, Price: price}, true
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// text concatenates the trimmed text nodes under n.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
