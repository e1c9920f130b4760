package cartControllers

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func testCustomer() *models.User {
	return &models.User{ID: "u1", Role: models.UserRoleUser, Status: models.UserStatusActive}
}

func TestAddToCartCreatesLine(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock", "status"}).
			AddRow("p1", "Ceramic Mug", 100.0, 10, "Active"))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_total"}).
			AddRow("c1", "u1", 0.0))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "count", "price"}))
	mock.ExpectExec(`INSERT INTO "cart_items"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(price\), 0\) FROM "cart_items" WHERE cart_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(200.0))
	mock.ExpectExec(`UPDATE "carts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var tags *cache.Tags
	err := AddToCart(context.Background(), db, tags, testCustomer(), AddToCartInput{ProductID: "p1", Count: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCartAccumulatesExistingLine(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock", "status"}).
			AddRow("p1", "Ceramic Mug", 100.0, 10, "Active"))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_total"}).
			AddRow("c1", "u1", 100.0))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "count", "price"}).
			AddRow("ci1", "c1", "p1", 1, 100.0))
	// 1 existing + 2 added: the line is repriced at 3 x 100.
	mock.ExpectExec(`UPDATE "cart_items" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(price\), 0\) FROM "cart_items" WHERE cart_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(300.0))
	mock.ExpectExec(`UPDATE "carts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var tags *cache.Tags
	err := AddToCart(context.Background(), db, tags, testCustomer(), AddToCartInput{ProductID: "p1", Count: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCartLazilyCreatesCart(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock", "status"}).
			AddRow("p1", "Ceramic Mug", 100.0, 10, "Active"))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_total"}))
	mock.ExpectExec(`INSERT INTO "carts"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "count", "price"}))
	mock.ExpectExec(`INSERT INTO "cart_items"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(price\), 0\) FROM "cart_items" WHERE cart_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(100.0))
	mock.ExpectExec(`UPDATE "carts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var tags *cache.Tags
	err := AddToCart(context.Background(), db, tags, testCustomer(), AddToCartInput{ProductID: "p1", Count: 1})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCartInsufficientStock(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock", "status"}).
			AddRow("p1", "Ceramic Mug", 100.0, 1, "Active"))

	var tags *cache.Tags
	err := AddToCart(context.Background(), db, tags, testCustomer(), AddToCartInput{ProductID: "p1", Count: 5})

	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock", "status"}))

	var tags *cache.Tags
	err := AddToCart(context.Background(), db, tags, testCustomer(), AddToCartInput{ProductID: "nope", Count: 1})

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToCartRejectsZeroCount(t *testing.T) {
	db, mock := newMockDB(t)

	var tags *cache.Tags
	err := AddToCart(context.Background(), db, tags, testCustomer(), AddToCartInput{ProductID: "p1", Count: 0})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartItemRejectsZeroCount(t *testing.T) {
	db, mock := newMockDB(t)

	var tags *cache.Tags
	err := UpdateCartItem(context.Background(), db, tags, testCustomer(), "ci1", UpdateCartItemInput{NewCount: 0})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartItemForeignCartLooksLikeMissing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "count", "price"}).
			AddRow("ci1", "c2", "p1", 1, 100.0))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock", "status"}).
			AddRow("p1", "Ceramic Mug", 100.0, 10, "Active"))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_total"}).
			AddRow("c2", "someone-else", 100.0))

	var tags *cache.Tags
	err := UpdateCartItem(context.Background(), db, tags, testCustomer(), "ci1", UpdateCartItemInput{NewCount: 2})

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartItemRepricesLine(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "count", "price"}).
			AddRow("ci1", "c1", "p1", 1, 100.0))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock", "status"}).
			AddRow("p1", "Ceramic Mug", 100.0, 10, "Active"))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_total"}).
			AddRow("c1", "u1", 100.0))
	mock.ExpectExec(`UPDATE "cart_items" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(price\), 0\) FROM "cart_items" WHERE cart_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(400.0))
	mock.ExpectExec(`UPDATE "carts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var tags *cache.Tags
	err := UpdateCartItem(context.Background(), db, tags, testCustomer(), "ci1", UpdateCartItemInput{NewCount: 4})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearCartKeepsCartRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_total"}).
			AddRow("c1", "u1", 300.0))
	mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "carts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var tags *cache.Tags
	err := ClearCart(context.Background(), db, tags, testCustomer())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserCartWithoutRowReturnsEmptyCart(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cart_total"}))

	cart, err := GetUserCart(db, "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.CartTotal)
	assert.Zero(t, cart.ItemCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}
