package catalogservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/service/catalogservice"
)

// MockCatalogRepository é uma implementação mock da interface domain.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) Update(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdateStock(ctx context.Context, productID string, stock []domain.StockVariant) error {
	args := m.Called(ctx, productID, stock)
	return args.Error(0)
}

func (m *MockCatalogRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCouponRepository é uma implementação mock da interface domain.CouponRepository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Save(ctx context.Context, coupon domain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func newCatalogService(repo *MockCatalogRepository, coupons *MockCouponRepository) *catalogservice.Service {
	return catalogservice.NewService(repo, coupons, logger.NewLogger("debug"))
}

// TestCreateProduct_Success testa a criação com ID gerado e grade de
// variantes montada a partir de cores × tamanhos.
func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	var saved domain.Product
	mockRepo.On("Save", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.Product")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Product)
		}).
		Return(domain.Product{ID: "gerado"}, nil)

	input := domain.Product{
		Name:   "Camiseta Básica",
		Price:  49.9,
		Colors: []string{"Preto", "Branco"},
		Sizes:  []string{"M", "G"},
	}

	_, err := svc.CreateProduct(context.Background(), input)

	assert.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	_, parseErr := uuid.Parse(saved.ID)
	assert.NoError(t, parseErr)
	// Grade 2×2 com quantidade zero
	assert.Len(t, saved.Stock, 4)
	for _, v := range saved.Stock {
		assert.Equal(t, 0, v.Quantity)
	}
	assert.NotZero(t, saved.CreatedAt)
	mockRepo.AssertExpectations(t)
}

// TestCreateProduct_ValidationBlocksSave testa que falha de validação não
// grava registro parcial.
func TestCreateProduct_ValidationBlocksSave(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	// Nome vazio, preço não positivo e promoção negativa devem falhar
	cases := []domain.Product{
		{Name: "", Price: 10},
		{Name: "Camiseta", Price: 0},
		{Name: "Camiseta", Price: 10, PromoPrice: -5},
	}

	for _, input := range cases {
		_, err := svc.CreateProduct(context.Background(), input)
		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}

	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestUpdateProduct_ReconcilesVariants testa que a edição de cores/tamanhos
// preserva as quantidades das variantes sobreviventes.
func TestUpdateProduct_ReconcilesVariants(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	id := uuid.NewString()
	existing := domain.Product{
		ID:     id,
		Name:   "Camiseta",
		Price:  49.9,
		Colors: []string{"Preto", "Branco"},
		Sizes:  []string{"M"},
		Stock: []domain.StockVariant{
			{Color: "Preto", Size: "M", Quantity: 5},
			{Color: "Branco", Size: "M", Quantity: 2},
		},
	}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), id).
		Return(existing, nil)

	var updated domain.Product
	mockRepo.On("Update", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.Product")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(domain.Product)
		}).
		Return(nil)

	// Branco sai, tamanho G entra
	input := domain.Product{
		ID:     id,
		Name:   "Camiseta",
		Price:  49.9,
		Colors: []string{"Preto"},
		Sizes:  []string{"M", "G"},
	}

	result, err := svc.UpdateProduct(context.Background(), input)

	assert.NoError(t, err)
	assert.Contains(t, updated.Stock, domain.StockVariant{Color: "Preto", Size: "M", Quantity: 5})
	assert.Contains(t, updated.Stock, domain.StockVariant{Color: "Preto", Size: "G", Quantity: 0})
	assert.NotContains(t, updated.Stock, domain.StockVariant{Color: "Branco", Size: "M", Quantity: 2})
	assert.Equal(t, existing.CreatedAt, result.CreatedAt)
	mockRepo.AssertExpectations(t)
}

// TestSetVariantQuantity testa o ajuste direto de uma variante pelo operador.
func TestSetVariantQuantity(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	id := uuid.NewString()
	product := domain.Product{
		ID: id,
		Stock: []domain.StockVariant{
			{Color: "Preto", Size: "M", Quantity: 1},
		},
	}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), id).
		Return(product, nil)
	mockRepo.On("UpdateStock", mock.AnythingOfType("context.backgroundCtx"), id,
		[]domain.StockVariant{{Color: "Preto", Size: "M", Quantity: 9}}).
		Return(nil)

	result, err := svc.SetVariantQuantity(context.Background(), id, "Preto", "M", 9)

	assert.NoError(t, err)
	assert.Equal(t, 9, result.VariantQuantity("Preto", "M"))
	mockRepo.AssertExpectations(t)
}

func TestSetVariantQuantity_NegativeFails(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	_, err := svc.SetVariantQuantity(context.Background(), uuid.NewString(), "Preto", "M", -1)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSetVariantQuantity_AbsentVariantFails(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	id := uuid.NewString()
	product := domain.Product{
		ID: id,
		Stock: []domain.StockVariant{
			{Color: "Preto", Size: "M", Quantity: 1},
		},
	}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), id).
		Return(product, nil)

	_, err := svc.SetVariantQuantity(context.Background(), id, "Verde", "XG", 3)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
}

// TestGetProductByID_InvalidUUID testa a validação do formato do ID.
func TestGetProductByID_InvalidUUID(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	_, err := svc.GetProductByID(context.Background(), "não-é-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// TestCreateCoupon testa a validação do percentual de desconto.
func TestCreateCoupon(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockCoupons := new(MockCouponRepository)
	svc := newCatalogService(mockRepo, mockCoupons)

	coupon := domain.Coupon{Code: "SAVE10", DiscountPercent: 10}
	mockCoupons.On("Save", mock.AnythingOfType("context.backgroundCtx"), coupon).Return(nil)

	assert.NoError(t, svc.CreateCoupon(context.Background(), coupon))

	err := svc.CreateCoupon(context.Background(), domain.Coupon{Code: "", DiscountPercent: 10})
	assert.IsType(t, &apperror.ValidationError{}, err)

	err = svc.CreateCoupon(context.Background(), domain.Coupon{Code: "MUITO", DiscountPercent: 101})
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockCoupons.AssertNumberOfCalls(t, "Save", 1)
}
