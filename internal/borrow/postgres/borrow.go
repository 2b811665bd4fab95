package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/inventory-management/internal/borrow"
	borrowDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/borrow"
	productDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/product"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BorrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) borrow.RepositoryAPI {
	return &BorrowRepository{db: db}
}

func joined(db *gorm.DB) *gorm.DB {
	return db.Table("borrow_requests AS br").
		Select("br.*, u.username, u.full_name, p.product_code, p.name AS product_name").
		Joins("LEFT JOIN users u ON u.id = br.user_id").
		Joins("LEFT JOIN products p ON p.id = br.product_id")
}

func (r *BorrowRepository) GetAll(ctx context.Context) ([]*borrowDatamodel.BorrowRequestRow, error) {
	var rows []*borrowDatamodel.BorrowRequestRow
	err := joined(r.db.WithContext(ctx)).Order("br.request_date DESC, br.id DESC").Find(&rows).Error
	return rows, err
}

func (r *BorrowRepository) GetByUser(ctx context.Context, userID int64) ([]*borrowDatamodel.BorrowRequestRow, error) {
	var rows []*borrowDatamodel.BorrowRequestRow
	err := joined(r.db.WithContext(ctx)).
		Where("br.user_id = ?", userID).
		Order("br.request_date DESC, br.id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *BorrowRepository) GetByID(ctx context.Context, id int64) (*borrowDatamodel.BorrowRequestRow, error) {
	return getRow(r.db.WithContext(ctx), id)
}

func getRow(db *gorm.DB, id int64) (*borrowDatamodel.BorrowRequestRow, error) {
	var rows []*borrowDatamodel.BorrowRequestRow
	if err := joined(db).Where("br.id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Create checks the requester and the product's availability and inserts
// the request in one transaction.
func (r *BorrowRepository) Create(ctx context.Context, req *borrowDatamodel.BorrowRequest) (*borrowDatamodel.BorrowRequestRow, error) {
	var created *borrowDatamodel.BorrowRequestRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&userDatamodel.User{}).Where("id = ? AND is_active = ?", req.UserID, true).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return borrow.ErrUserNotFound
		}

		var product productDatamodel.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", req.ProductID).First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return borrow.ErrProductNotFound
			}
			return err
		}
		if !product.IsAvailable {
			return borrow.ErrProductUnavailable
		}

		if err := tx.Create(req).Error; err != nil {
			return err
		}

		row, err := getRow(tx, req.ID)
		if err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Transition applies t to request id. The status update and the product
// availability change commit together or not at all. An unknown id yields
// nil, nil.
func (r *BorrowRepository) Transition(ctx context.Context, id int64, t borrow.Transition) (*borrowDatamodel.BorrowRequestRow, error) {
	var updated *borrowDatamodel.BorrowRequestRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req borrowDatamodel.BorrowRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&req).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if !t.Allows(req.Status) {
			if t.Invalid == nil {
				return borrow.ErrInvalidStatus
			}
			return t.Invalid
		}

		changes := map[string]interface{}{
			"status":     string(t.To),
			"updated_at": t.At,
		}
		if t.SetBorrowDate {
			changes["borrow_date"] = t.At
		}
		if t.SetReturnDate {
			changes["return_date"] = t.At
		}
		if err := tx.Model(&borrowDatamodel.BorrowRequest{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}

		if t.ProductAvailable != nil {
			err := tx.Model(&productDatamodel.Product{}).Where("id = ?", req.ProductID).Updates(map[string]interface{}{
				"is_available": *t.ProductAvailable,
				"updated_at":   t.At,
			}).Error
			if err != nil {
				return err
			}
		}

		row, err := getRow(tx, id)
		if err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
