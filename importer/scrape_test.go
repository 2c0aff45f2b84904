package importer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupoftea4/retail-pos/importer"
	"github.com/cupoftea4/retail-pos/models"
)

const catalogPage = `<!doctype html>
<html><body>
<div class="product-card"><h5 class="card-title">Outside list</h5>
  <p class="card-price">R$ 1,00</p><p data-qtd="1">1 un</p></div>
<div id="produtos-lista">
  <div class="col product-card">
    <h5 class="card-title"> Arroz 5kg </h5>
    <p class="card-price" data-preco="24.90">R$&nbsp;24,90</p>
    <p data-qtd="12">Estoque: 12</p>
  </div>
  <div class="product-card">
    <h5 class="card-title">Feijão</h5>
    <p class="card-price">R$&nbsp;8,49</p>
    <p data-qtd="0">Esgotado</p>
  </div>
  <div class="product-card">
    <h5 class="card-title">Sem preço</h5>
    <p data-qtd="3">3</p>
  </div>
  <div class="product-card">
    <h5 class="card-title">Quantidade ruim</h5>
    <p class="card-price">R$ 2,00</p>
    <p data-qtd="muitos">?</p>
  </div>
</div>
</body></html>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeCatalog(t *testing.T) {
	srv := serve(t, http.StatusOK, catalogPage)

	records, err := importer.ScrapeCatalog(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Arroz 5kg", records[0].Name)
	assert.Equal(t, 12, records[0].Quantity)
	assert.True(t, price("24.90").Equal(records[0].Price))

	assert.Equal(t, "Feijão", records[1].Name)
	assert.Equal(t, 0, records[1].Quantity)
	assert.True(t, price("8.49").Equal(records[1].Price))
}

func TestScrapeCatalogFailures(t *testing.T) {
	cases := map[string]*httptest.Server{
		"server error": serve(t, http.StatusInternalServerError, "boom"),
		"no list":      serve(t, http.StatusOK, "<html><body><p>maintenance</p></body></html>"),
		"no cards": serve(t, http.StatusOK,
			`<div id="produtos-lista"><div class="product-card"><h5 class="card-title">x</h5></div></div>`),
	}
	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := importer.ScrapeCatalog(context.Background(), srv.Client(), srv.URL)
			assert.ErrorIs(t, err, models.ErrExternalSource)
		})
	}
}

func TestScrapeCatalogUnreachable(t *testing.T) {
	srv := serve(t, http.StatusOK, catalogPage)
	url := srv.URL
	srv.Close()

	_, err := importer.ScrapeCatalog(context.Background(), http.DefaultClient, url)
	assert.ErrorIs(t, err, models.ErrExternalSource)
}

func TestParseCatalogPrefersDataAttribute(t *testing.T) {
	page := `<div id="produtos-lista"><article class="product-card">
		<h5 class="card-title">Leite</h5>
		<p class="card-price" data-preco="4,75">promo</p>
		<p data-qtd=" 7 ">7</p></article></div>`

	records, err := importer.ParseCatalog(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, price("4.75").Equal(records[0].Price))
	assert.Equal(t, 7, records[0].Quantity)
}
