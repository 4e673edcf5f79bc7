package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/linemk/shopping-mall/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMall хранит состояние всех таблиц в памяти и реализует интерфейсы хранилищ
type fakeMall struct {
	profiles  map[int64]*models.Profile
	consumers map[int64]*models.Consumer // ключ: profile_id
	sellers   map[int64]*models.Seller   // ключ: id
	products  map[int64]*models.Product
	images    map[int64][]*models.ProductImage
	cart      []*models.CartLine
	payments  []*models.Payment
	reviews   map[int64]*models.Review
	scraps    []*models.Scrap

	takenOrderNumbers map[string]bool
	orderChecks       int
	reviewReads       int
	nextID            int64
}

var (
	_ storage.ProfileStorage  = (*fakeMall)(nil)
	_ storage.ConsumerStorage = (*fakeMall)(nil)
	_ storage.SellerStorage   = (*fakeMall)(nil)
	_ storage.ProductStorage  = (*fakeMall)(nil)
	_ storage.CartStorage     = (*fakeMall)(nil)
	_ storage.PaymentStorage  = (*fakeMall)(nil)
	_ storage.ReviewStorage   = (*fakeMall)(nil)
	_ storage.ScrapStorage    = (*fakeMall)(nil)
)

func newFakeMall() *fakeMall {
	return &fakeMall{
		profiles:          make(map[int64]*models.Profile),
		consumers:         make(map[int64]*models.Consumer),
		sellers:           make(map[int64]*models.Seller),
		products:          make(map[int64]*models.Product),
		images:            make(map[int64][]*models.ProductImage),
		reviews:           make(map[int64]*models.Review),
		takenOrderNumbers: make(map[string]bool),
		nextID:            100,
	}
}

func (f *fakeMall) id() int64 {
	f.nextID++
	return f.nextID
}

// withConsumer заводит профиль с покупателем; id покупателя = id профиля + 1000
func (f *fakeMall) withConsumer(profileID, payMoney int64) *models.Consumer {
	f.profiles[profileID] = &models.Profile{ID: profileID, Email: "c@example.com", PayMoney: payMoney}
	c := &models.Consumer{ID: profileID + 1000, ProfileID: profileID}
	f.consumers[profileID] = c
	return c
}

func (f *fakeMall) withSeller(profileID, sellerID int64, company string) *models.Seller {
	s := &models.Seller{ID: sellerID, ProfileID: profileID, CompanyName: company}
	f.sellers[sellerID] = s
	return s
}

func (f *fakeMall) withProduct(id, sellerID, price, stock int64) *models.Product {
	p := &models.Product{ID: id, SellerID: sellerID, Title: "product", Price: price, Amount: stock}
	f.products[id] = p
	return p
}

func (f *fakeMall) withCartLine(consumerID, productID, amount int64) {
	f.cart = append(f.cart, &models.CartLine{ID: f.id(), ConsumerID: consumerID, ProductID: productID, Amount: amount})
}

// ProfileStorage

func (f *fakeMall) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, storage.ErrProfileNotFound
}

func (f *fakeMall) GetProfileByID(_ context.Context, id int64) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, storage.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeMall) CreateConsumerProfile(_ context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.ID = f.id()
	f.profiles[profile.ID] = profile
	f.consumers[profile.ID] = &models.Consumer{ID: f.id(), ProfileID: profile.ID}
	return profile, nil
}

func (f *fakeMall) LockProfileByIDTx(ctx context.Context, _ *sql.Tx, id int64) (*models.Profile, error) {
	p, err := f.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (f *fakeMall) DecreasePayMoney(_ context.Context, _ *sql.Tx, id int64, amount int64) error {
	p, ok := f.profiles[id]
	if !ok || p.PayMoney < amount {
		return storage.ErrNotEnoughPayMoney
	}
	p.PayMoney -= amount
	return nil
}

// ConsumerStorage, SellerStorage

func (f *fakeMall) GetConsumerByProfileID(_ context.Context, profileID int64) (*models.Consumer, error) {
	c, ok := f.consumers[profileID]
	if !ok {
		return nil, storage.ErrConsumerNotFound
	}
	return c, nil
}

func (f *fakeMall) GetSellerByProfileID(_ context.Context, profileID int64) (*models.Seller, error) {
	for _, s := range f.sellers {
		if s.ProfileID == profileID {
			return s, nil
		}
	}
	return nil, storage.ErrSellerNotFound
}

func (f *fakeMall) GetSellerByID(_ context.Context, id int64) (*models.Seller, error) {
	s, ok := f.sellers[id]
	if !ok {
		return nil, storage.ErrSellerNotFound
	}
	return s, nil
}

// ProductStorage

func (f *fakeMall) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeMall) GetProductImages(_ context.Context, productID int64) ([]*models.ProductImage, error) {
	return f.images[productID], nil
}

func (f *fakeMall) DecreaseStock(_ context.Context, _ *sql.Tx, productID int64, amount int64) error {
	p, ok := f.products[productID]
	if !ok || p.Amount < amount {
		return storage.ErrInsufficientStock
	}
	p.Amount -= amount
	return nil
}

// CartStorage

func (f *fakeMall) GetActiveCartLinesTx(_ context.Context, _ *sql.Tx, consumerID int64) ([]*models.CartLine, error) {
	var lines []*models.CartLine
	for _, l := range f.cart {
		if l.ConsumerID != consumerID || l.IsDeleted {
			continue
		}
		snapshot := *f.products[l.ProductID]
		line := *l
		line.Product = &snapshot
		lines = append(lines, &line)
	}
	return lines, nil
}

func (f *fakeMall) SoftDeleteCartLine(_ context.Context, _ *sql.Tx, id int64) error {
	for _, l := range f.cart {
		if l.ID == id {
			l.IsDeleted = true
		}
	}
	return nil
}

func (f *fakeMall) activeCartLines() int {
	n := 0
	for _, l := range f.cart {
		if !l.IsDeleted {
			n++
		}
	}
	return n
}

// PaymentStorage

func (f *fakeMall) ExistsByOrderNumber(_ context.Context, _ *sql.Tx, orderNumber string) (bool, error) {
	f.orderChecks++
	if f.takenOrderNumbers[orderNumber] {
		return true, nil
	}
	for _, p := range f.payments {
		if p.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMall) CreatePayment(_ context.Context, _ *sql.Tx, payment *models.Payment) (int64, error) {
	payment.ID = f.id()
	f.payments = append(f.payments, payment)
	return payment.ID, nil
}

func (f *fakeMall) GetPaymentsByOrderNumber(_ context.Context, _ *sql.Tx, orderNumber string) ([]*models.Payment, error) {
	return f.filterPayments(func(p *models.Payment) bool { return p.OrderNumber == orderNumber }), nil
}

func (f *fakeMall) GetPaymentsByConsumerID(_ context.Context, consumerID int64) ([]*models.Payment, error) {
	return f.filterPayments(func(p *models.Payment) bool { return p.ConsumerID == consumerID }), nil
}

func (f *fakeMall) GetPaymentsBySellerID(_ context.Context, sellerID int64) ([]*models.Payment, error) {
	return f.filterPayments(func(p *models.Payment) bool { return p.SellerID == sellerID }), nil
}

func (f *fakeMall) filterPayments(keep func(p *models.Payment) bool) []*models.Payment {
	result := make([]*models.Payment, 0)
	for _, p := range f.payments {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}

// ReviewStorage

func (f *fakeMall) liveReviews(keep func(r *models.Review) bool) []*models.Review {
	f.reviewReads++
	result := make([]*models.Review, 0)
	for _, r := range f.reviews {
		if !r.IsDeleted && keep(r) {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func page(reviews []*models.Review, limit, offset int) []*models.Review {
	if offset >= len(reviews) {
		return []*models.Review{}
	}
	end := offset + limit
	if end > len(reviews) {
		end = len(reviews)
	}
	return reviews[offset:end]
}

func (f *fakeMall) GetReviewsByProductID(_ context.Context, productID int64) ([]*models.Review, error) {
	return f.liveReviews(func(r *models.Review) bool { return r.ProductID == productID }), nil
}

func (f *fakeMall) GetReviewsPageByProductID(_ context.Context, productID int64, limit, offset int) ([]*models.Review, int64, error) {
	all := f.liveReviews(func(r *models.Review) bool { return r.ProductID == productID })
	return page(all, limit, offset), int64(len(all)), nil
}

func (f *fakeMall) GetReviewsByConsumerID(_ context.Context, consumerID int64) ([]*models.Review, error) {
	return f.liveReviews(func(r *models.Review) bool { return r.ConsumerID == consumerID }), nil
}

func (f *fakeMall) GetReviewsPageByConsumerID(_ context.Context, consumerID int64, limit, offset int) ([]*models.Review, int64, error) {
	all := f.liveReviews(func(r *models.Review) bool { return r.ConsumerID == consumerID })
	return page(all, limit, offset), int64(len(all)), nil
}

func (f *fakeMall) GetAverageRating(_ context.Context, productID int64) (float64, error) {
	var sum float64
	var n int
	for _, r := range f.reviews {
		if r.ProductID == productID && !r.IsDeleted {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeMall) CreateReview(_ context.Context, _ *sql.Tx, review *models.Review) (*models.Review, error) {
	review.ID = f.id()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	f.reviews[review.ID] = review
	cp := *review
	return &cp, nil
}

func (f *fakeMall) GetReviewForUpdateTx(_ context.Context, _ *sql.Tx, consumerID, reviewID int64) (*models.Review, error) {
	r, ok := f.reviews[reviewID]
	if !ok || r.ConsumerID != consumerID || r.IsDeleted {
		return nil, storage.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeMall) UpdateReview(_ context.Context, _ *sql.Tx, review *models.Review) (*models.Review, error) {
	if _, ok := f.reviews[review.ID]; !ok {
		return nil, storage.ErrReviewNotFound
	}
	review.UpdatedAt = time.Now()
	cp := *review
	f.reviews[review.ID] = &cp
	return review, nil
}

func (f *fakeMall) UpdateReviewImage(_ context.Context, _ *sql.Tx, reviewID int64, imageURL *string) error {
	if r, ok := f.reviews[reviewID]; ok {
		r.ImageURL = imageURL
	}
	return nil
}

func (f *fakeMall) SoftDeleteReviews(_ context.Context, _ *sql.Tx, consumerID int64, ids []int64) ([]*models.Review, error) {
	deleted := make([]*models.Review, 0)
	for _, id := range ids {
		r, ok := f.reviews[id]
		if !ok || r.ConsumerID != consumerID || r.IsDeleted {
			continue
		}
		r.IsDeleted = true
		cp := *r
		deleted = append(deleted, &cp)
	}
	return deleted, nil
}

// ScrapStorage

func (f *fakeMall) AddScrap(_ context.Context, _ *sql.Tx, consumerID, productID int64) error {
	for _, s := range f.scraps {
		if s.ConsumerID == consumerID && s.ProductID == productID {
			return nil
		}
	}
	f.scraps = append(f.scraps, &models.Scrap{ID: f.id(), ConsumerID: consumerID, ProductID: productID, CreatedAt: time.Now()})
	return nil
}

func (f *fakeMall) GetScrapsByConsumerID(_ context.Context, consumerID int64) ([]*models.Scrap, error) {
	result := make([]*models.Scrap, 0)
	for _, s := range f.scraps {
		if s.ConsumerID == consumerID {
			cp := *s
			cp.Product = f.products[s.ProductID]
			result = append(result, &cp)
		}
	}
	return result, nil
}
