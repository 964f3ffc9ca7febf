package repository

import (
	"fmt"

	"pest_crm/internal/models"

	"gorm.io/gorm"
)

// OrderFilter narrows List results. Month filtering needs both Month and
// Year, range filtering needs both StartDate and EndDate; a zero value
// means the dimension is not filtered.
type OrderFilter struct {
	Date      string
	Month     int
	Year      int
	StartDate string
	EndDate   string
	Status    string
}

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	List(filter OrderFilter) ([]models.Order, error)
	Search(phone, address, date string) ([]models.Order, error)
	Update(order *models.Order) error
	Delete(id string) error
	// Transaction runs fn against a repository bound to a single
	// transaction; any returned error rolls the whole thing back.
	Transaction(fn func(repo OrderRepository) error) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(filter OrderFilter) ([]models.Order, error) {
	query := r.db.Model(&models.Order{})

	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Month != 0 && filter.Year != 0 {
		// The "-31" upper bound is safe under lexicographic compare for
		// any month length.
		startDate := fmt.Sprintf("%04d-%02d-01", filter.Year, filter.Month)
		endDate := fmt.Sprintf("%04d-%02d-31", filter.Year, filter.Month)
		query = query.Where("date BETWEEN ? AND ?", startDate, endDate)
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		query = query.Where("date BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var orders []models.Order
	err := query.Order("date asc").Order("time asc").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Search(phone, address, date string) ([]models.Order, error) {
	query := r.db.Model(&models.Order{})

	if phone != "" {
		// Substring match against the serialized phone column.
		query = query.Where("phones LIKE ?", "%"+phone+"%")
	}
	if address != "" {
		query = query.Where("address LIKE ?", "%"+address+"%")
	}
	if date != "" {
		query = query.Where("date = ?", date)
	}

	var orders []models.Order
	err := query.Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) Delete(id string) error {
	result := r.db.Delete(&models.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) Transaction(fn func(repo OrderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepository{db: tx})
	})
}
