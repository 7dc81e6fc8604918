package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/navegante/internal/model"
)

func TestConcreteScenario_BebidasAgua(t *testing.T) {
	d, _ := newTestDispatcher(t)

	sectionID := mustID(t, d, AddSection{Name: "Bebidas"})
	require.Equal(t, int64(1), sectionID)
	productID := mustID(t, d, AddProduct{Name: "Agua", Price: dec("1.5"), SectionID: sectionID})
	require.Equal(t, int64(1), productID)

	listing := mustDispatch(t, d, SectionsWithProducts{})
	data, err := json.Marshal(listing)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"Bebidas","products":[{"id":1,"name":"Agua","price":1.5}]}]`, string(data))

	mustDispatch(t, d, DeleteSection{ID: 1})

	assert.Empty(t, products(t, d))
	assert.Empty(t, sections(t, d))
}

func TestSectionsWithProducts_NestsUnderOwningSection(t *testing.T) {
	d, _ := newTestDispatcher(t)
	drinks := mustID(t, d, AddSection{Name: "Bebidas"})
	food := mustID(t, d, AddSection{Name: "Comidas"})
	mustID(t, d, AddProduct{Name: "Arepa", Price: dec("3"), SectionID: food})
	mustID(t, d, AddProduct{Name: "Jugo", Price: dec("2.25"), SectionID: drinks})
	mustID(t, d, AddSection{Name: "Vacía"})

	got := mustDispatch(t, d, SectionsWithProducts{}).([]model.SectionWithProducts)

	require.Len(t, got, 3)
	assert.Equal(t, "Bebidas", got[0].Title)
	require.Len(t, got[0].Products, 1)
	assert.Equal(t, "Jugo", got[0].Products[0].Name)
	assert.Equal(t, "2.25", got[0].Products[0].Price.String())
	assert.Equal(t, "Arepa", got[1].Products[0].Name)
	assert.NotNil(t, got[2].Products)
	assert.Empty(t, got[2].Products)
}

func TestDeleteSection_RemovesOnlyItsProducts(t *testing.T) {
	d, _ := newTestDispatcher(t)
	drinks := mustID(t, d, AddSection{Name: "Bebidas"})
	food := mustID(t, d, AddSection{Name: "Comidas"})
	mustID(t, d, AddProduct{Name: "Agua", Price: dec("1"), SectionID: drinks})
	mustID(t, d, AddProduct{Name: "Jugo", Price: dec("2"), SectionID: drinks})
	arepa := mustID(t, d, AddProduct{Name: "Arepa", Price: dec("3"), SectionID: food})

	mustDispatch(t, d, DeleteSection{ID: drinks})

	remaining := products(t, d)
	require.Len(t, remaining, 1)
	assert.Equal(t, arepa, remaining[0].ID)
	for _, p := range remaining {
		assert.NotEqual(t, drinks, p.SectionID, "orphan product survived")
	}
	assert.Equal(t, []model.Section{{ID: food, Name: "Comidas"}}, sections(t, d))
}

func TestDeleteSection_AbsentIsNoOp(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), DeleteSection{ID: 42})
	assert.NoError(t, err)
}

func TestDeleteSection_BlockedWhenProductsAreOrdered(t *testing.T) {
	d, _ := newTestDispatcher(t)
	drinks := mustID(t, d, AddSection{Name: "Bebidas"})
	water := mustID(t, d, AddProduct{Name: "Agua", Price: dec("1"), SectionID: drinks})
	mustID(t, d, AddProduct{Name: "Jugo", Price: dec("2"), SectionID: drinks})
	mustID(t, d, AddOrder{CustomerName: "Ana", Phone: "1", Items: []model.NewLineItem{{ProductID: water, Quantity: 1}}})

	_, err := d.Dispatch(context.Background(), DeleteSection{ID: drinks})

	require.Error(t, err)
	assert.True(t, IsInUse(err))
	assert.Len(t, products(t, d), 2, "cascade must not partially apply")
	assert.Len(t, sections(t, d), 1)
}

func TestEditSection(t *testing.T) {
	d, _ := newTestDispatcher(t)
	id := mustID(t, d, AddSection{Name: "Bebidas"})

	mustDispatch(t, d, EditSection{ID: id, Name: "  Jugos  "})
	assert.Equal(t, "Jugos", sections(t, d)[0].Name)

	_, err := d.Dispatch(context.Background(), EditSection{ID: 999, Name: "Nada"})
	assert.NoError(t, err, "editing an absent section is a no-op")

	_, err = d.Dispatch(context.Background(), EditSection{ID: id, Name: " "})
	assert.True(t, IsValidation(err))
}

func TestAddSection_RejectsEmptyName(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), AddSection{Name: "   "})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, sections(t, d))
}

func TestAddProduct_RejectsNegativePrice(t *testing.T) {
	d, _ := newTestDispatcher(t)
	sectionID := mustID(t, d, AddSection{Name: "Bebidas"})

	_, err := d.Dispatch(context.Background(), AddProduct{Name: "Agua", Price: dec("-0.01"), SectionID: sectionID})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	for _, p := range products(t, d) {
		assert.False(t, p.Price.IsNegative())
	}
	assert.Empty(t, products(t, d))
}

func TestAddProduct_RequiresExistingSection(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), AddProduct{Name: "Agua", Price: dec("1"), SectionID: 7})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "sectionId", ve.Field)
}

func TestAddProduct_ZeroPriceAllowed(t *testing.T) {
	d, _ := newTestDispatcher(t)
	sectionID := mustID(t, d, AddSection{Name: "Bebidas"})

	mustID(t, d, AddProduct{Name: "Hielo", Price: dec("0"), SectionID: sectionID})
}

func TestDeleteProduct(t *testing.T) {
	d, _ := newTestDispatcher(t)
	sectionID := mustID(t, d, AddSection{Name: "Bebidas"})
	water := mustID(t, d, AddProduct{Name: "Agua", Price: dec("1"), SectionID: sectionID})
	juice := mustID(t, d, AddProduct{Name: "Jugo", Price: dec("2"), SectionID: sectionID})

	mustDispatch(t, d, DeleteProduct{ID: water})
	mustDispatch(t, d, DeleteProduct{ID: 999})

	remaining := products(t, d)
	require.Len(t, remaining, 1)
	assert.Equal(t, juice, remaining[0].ID)
}

func TestDeleteProduct_BlockedWhenOrdered(t *testing.T) {
	d, _ := newTestDispatcher(t)
	sectionID := mustID(t, d, AddSection{Name: "Bebidas"})
	water := mustID(t, d, AddProduct{Name: "Agua", Price: dec("1"), SectionID: sectionID})
	mustID(t, d, AddOrder{CustomerName: "Ana", Phone: "1", Items: []model.NewLineItem{{ProductID: water, Quantity: 2}}})

	_, err := d.Dispatch(context.Background(), DeleteProduct{ID: water})

	assert.True(t, IsInUse(err))
	assert.Len(t, products(t, d), 1)
}

func TestRates_AppendOnlyCurrentIsLatest(t *testing.T) {
	d, _ := newTestDispatcher(t)

	current := mustDispatch(t, d, GetCurrentRate{})
	assert.Nil(t, current, "no rate yet must be an empty result")

	r1 := mustID(t, d, AddRate{USDRate: dec("36.5"), MeterRate: dec("0.9")})
	r2 := mustID(t, d, AddRate{USDRate: dec("38"), MeterRate: dec("0.95")})

	rate := mustDispatch(t, d, GetCurrentRate{}).(*model.ExchangeRate)
	assert.Equal(t, r2, rate.ID)
	assert.Equal(t, "38", rate.USDRate.String())
	assert.Equal(t, "0.95", rate.MeterRate.String())

	history := mustDispatch(t, d, ListRates{}).([]model.ExchangeRate)
	require.Len(t, history, 2)
	assert.Equal(t, r1, history[0].ID)
	assert.Equal(t, "36.5", history[0].USDRate.String())
}

func TestAddRate_RejectsNonPositive(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), AddRate{USDRate: dec("0"), MeterRate: dec("1")})
	assert.True(t, IsValidation(err))

	_, err = d.Dispatch(context.Background(), AddRate{USDRate: dec("38"), MeterRate: dec("-1")})
	assert.True(t, IsValidation(err))
}

func TestConvert(t *testing.T) {
	d, _ := newTestDispatcher(t)

	none := mustDispatch(t, d, Convert{Amount: dec("10")})
	assert.Nil(t, none)

	mustID(t, d, AddRate{USDRate: dec("38"), MeterRate: dec("0.9")})
	conv := mustDispatch(t, d, Convert{Amount: dec("10")}).(*model.Conversion)
	assert.Equal(t, "380", conv.Converted.String())
	assert.Equal(t, "38", conv.USDRate.String())

	_, err := d.Dispatch(context.Background(), Convert{Amount: dec("-1")})
	assert.True(t, IsValidation(err))
}

func TestConvert_StoreFailureReportsConvert(t *testing.T) {
	d, st := newTestDispatcher(t)
	require.NoError(t, st.Close())

	_, err := d.Dispatch(context.Background(), Convert{Amount: dec("10")})

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeStore, de.Code)
	assert.Equal(t, OpConvert, de.Op)
}

func TestMoney_ExtremeValuesSurviveListings(t *testing.T) {
	d, _ := newTestDispatcher(t)
	huge := dec("1" + strings.Repeat("0", 400))
	precise := dec("0.12345678901234567890123")

	section := mustID(t, d, AddSection{Name: "Bebidas"})
	mustID(t, d, AddProduct{Name: "Oro", Price: huge, SectionID: section})
	mustID(t, d, AddProduct{Name: "Agua", Price: precise, SectionID: section})

	listed := products(t, d)
	require.Len(t, listed, 2)
	assert.True(t, huge.Equal(listed[0].Price))
	assert.True(t, precise.Equal(listed[1].Price))

	nested := mustDispatch(t, d, SectionsWithProducts{}).([]model.SectionWithProducts)
	require.Len(t, nested[0].Products, 2)
	assert.True(t, huge.Equal(nested[0].Products[0].Price))

	mustID(t, d, AddRate{USDRate: huge, MeterRate: precise})
	rate := mustDispatch(t, d, GetCurrentRate{}).(*model.ExchangeRate)
	assert.True(t, huge.Equal(rate.USDRate))
	assert.True(t, precise.Equal(rate.MeterRate))

	conv := mustDispatch(t, d, Convert{Amount: dec("2")}).(*model.Conversion)
	assert.True(t, huge.Mul(dec("2")).Equal(conv.Converted))
}

func TestUnknownRequestType(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), fakeRequest{})

	assert.Equal(t, CodeUnknownOperation, CodeOf(err))
}

type fakeRequest struct{}

func (fakeRequest) Op() Op     { return "fake" }
func (fakeRequest) isRequest() {}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveOperation(op, status string, _ time.Duration) {
	o.calls = append(o.calls, op+":"+status)
}

func TestDispatch_NotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	d, _ := newTestDispatcher(t, WithObserver(obs))

	mustID(t, d, AddSection{Name: "Bebidas"})
	_, _ = d.Dispatch(context.Background(), AddSection{Name: ""})

	assert.Equal(t, []string{"add-section:ok", "add-section:VALIDATION"}, obs.calls)
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}
