package services

import (
	"math"

	"pest_crm/internal/models"
	"pest_crm/internal/repository"

	"github.com/google/uuid"
)

// FileRemover removes a stored upload. Best-effort: implementations log
// failures instead of returning them, so a missing file can never block an
// order delete.
type FileRemover interface {
	Remove(reference string)
}

type CreateOrderRequest struct {
	OrderType  string   `json:"orderType" binding:"required,oneof=primary secondary"`
	ClientName string   `json:"clientName" binding:"required"`
	ClientType string   `json:"clientType" binding:"required,oneof=individual legal"`
	Pest       string   `json:"pest" binding:"required"`
	ObjectType string   `json:"objectType" binding:"required"`
	Volume     string   `json:"volume"`
	Address    string   `json:"address" binding:"required"`
	Date       string   `json:"date" binding:"required"`
	Time       string   `json:"time" binding:"required"`
	BasePrice  float64  `json:"basePrice"`
	Phones     []string `json:"phones"`
	Comment    string   `json:"comment"`
	Manager    string   `json:"manager" binding:"required"`
}

// UpdateOrderRequest is a partial update: only non-nil fields are applied.
// A status change to "completed" carrying both FinalAmount and MasterPercent
// triggers the payout computation; RepeatDate in the same call spawns the
// follow-up visit.
type UpdateOrderRequest struct {
	OrderType  *string   `json:"orderType" binding:"omitempty,oneof=primary secondary"`
	ClientName *string   `json:"clientName"`
	ClientType *string   `json:"clientType" binding:"omitempty,oneof=individual legal"`
	Pest       *string   `json:"pest"`
	ObjectType *string   `json:"objectType"`
	Volume     *string   `json:"volume"`
	Address    *string   `json:"address"`
	Date       *string   `json:"date"`
	Time       *string   `json:"time"`
	BasePrice  *float64  `json:"basePrice"`
	Phones     *[]string `json:"phones"`
	Comment    *string   `json:"comment"`
	Manager    *string   `json:"manager"`

	Status *string `json:"status" binding:"omitempty,oneof=in_progress completed cancelled"`

	FinalAmount       *float64 `json:"finalAmount"`
	MasterPercent     *float64 `json:"masterPercent"`
	MasterName        *string  `json:"masterName"`
	MasterContact     *string  `json:"masterContact"`
	CompletionComment *string  `json:"completionComment"`
	ContractPhoto     *string  `json:"contractPhoto"`
	RepeatDate        *string  `json:"repeatDate"`
	RepeatTime        *string  `json:"repeatTime"`

	CancelReason *string `json:"cancelReason"`
}

type OrderService interface {
	CreateOrder(req *CreateOrderRequest) (*models.Order, error)
	GetOrderByID(id string) (*models.Order, error)
	ListOrders(filter repository.OrderFilter) ([]models.Order, error)
	SearchOrders(phone, address, date string) ([]models.Order, error)
	UpdateOrder(id string, req *UpdateOrderRequest) (*models.Order, error)
	DeleteOrder(id string) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	files     FileRemover
}

func NewOrderService(orderRepo repository.OrderRepository, files FileRemover) OrderService {
	return &orderService{orderRepo: orderRepo, files: files}
}

func (s *orderService) CreateOrder(req *CreateOrderRequest) (*models.Order, error) {
	order := &models.Order{
		ID:         uuid.NewString(),
		OrderType:  req.OrderType,
		ClientName: req.ClientName,
		ClientType: req.ClientType,
		Pest:       req.Pest,
		ObjectType: req.ObjectType,
		Volume:     req.Volume,
		Address:    req.Address,
		Phones:     models.PhoneList(req.Phones),
		Date:       req.Date,
		Time:       req.Time,
		BasePrice:  req.BasePrice,
		Comment:    req.Comment,
		Manager:    req.Manager,
		// New orders always start in progress, whatever the caller sent.
		Status: string(models.OrderInProgress),
	}
	if order.Phones == nil {
		order.Phones = models.PhoneList{}
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.List(filter)
}

func (s *orderService) SearchOrders(phone, address, date string) ([]models.Order, error) {
	return s.orderRepo.Search(phone, address, date)
}

func (s *orderService) UpdateOrder(id string, req *UpdateOrderRequest) (*models.Order, error) {
	var updated *models.Order

	// The update and the optional follow-up insert commit together.
	err := s.orderRepo.Transaction(func(repo repository.OrderRepository) error {
		order, err := repo.GetByID(id)
		if err != nil {
			return err
		}
		snapshot := *order

		applyOrderUpdate(order, req)

		if isCompletion(req) {
			masterIncome := math.Round(*req.FinalAmount * *req.MasterPercent / 100)
			cashDesk := *req.FinalAmount - masterIncome
			order.MasterIncome = &masterIncome
			order.CashDesk = &cashDesk
		}

		if err := repo.Update(order); err != nil {
			return err
		}

		if req.RepeatDate != nil && *req.RepeatDate != "" &&
			req.Status != nil && *req.Status == string(models.OrderCompleted) {
			if err := repo.Create(buildFollowUpOrder(&snapshot, req)); err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *orderService) DeleteOrder(id string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.orderRepo.Delete(id); err != nil {
		return err
	}

	if order.ContractPhoto != "" {
		s.files.Remove(order.ContractPhoto)
	}
	return nil
}

// isCompletion reports whether this call both moves the order to completed
// and carries the two payout inputs. The computation re-runs on every such
// call and is idempotent; a completion without the amounts is a valid
// draft save and skips it.
func isCompletion(req *UpdateOrderRequest) bool {
	return req.Status != nil && *req.Status == string(models.OrderCompleted) &&
		req.FinalAmount != nil && req.MasterPercent != nil
}

func applyOrderUpdate(order *models.Order, req *UpdateOrderRequest) {
	if req.OrderType != nil {
		order.OrderType = *req.OrderType
	}
	if req.ClientName != nil {
		order.ClientName = *req.ClientName
	}
	if req.ClientType != nil {
		order.ClientType = *req.ClientType
	}
	if req.Pest != nil {
		order.Pest = *req.Pest
	}
	if req.ObjectType != nil {
		order.ObjectType = *req.ObjectType
	}
	if req.Volume != nil {
		order.Volume = *req.Volume
	}
	if req.Address != nil {
		order.Address = *req.Address
	}
	if req.Date != nil {
		order.Date = *req.Date
	}
	if req.Time != nil {
		order.Time = *req.Time
	}
	if req.BasePrice != nil {
		order.BasePrice = *req.BasePrice
	}
	if req.Phones != nil {
		order.Phones = models.PhoneList(*req.Phones)
	}
	if req.Comment != nil {
		order.Comment = *req.Comment
	}
	if req.Manager != nil {
		order.Manager = *req.Manager
	}
	if req.Status != nil {
		// Any transition is allowed; reverting to in_progress keeps the
		// completion fields already on the record.
		order.Status = *req.Status
	}
	if req.FinalAmount != nil {
		order.FinalAmount = req.FinalAmount
	}
	if req.MasterPercent != nil {
		order.MasterPercent = req.MasterPercent
	}
	if req.MasterName != nil {
		order.MasterName = *req.MasterName
	}
	if req.MasterContact != nil {
		order.MasterContact = *req.MasterContact
	}
	if req.CompletionComment != nil {
		order.CompletionComment = *req.CompletionComment
	}
	if req.ContractPhoto != nil {
		order.ContractPhoto = *req.ContractPhoto
	}
	if req.RepeatDate != nil {
		order.RepeatDate = *req.RepeatDate
	}
	if req.RepeatTime != nil {
		order.RepeatTime = *req.RepeatTime
	}
	if req.CancelReason != nil {
		order.CancelReason = *req.CancelReason
	}
}

// buildFollowUpOrder synthesizes the secondary visit from the pre-update
// snapshot of the order being completed. It is a brand-new independent
// order with no reference back to its parent.
func buildFollowUpOrder(snapshot *models.Order, req *UpdateOrderRequest) *models.Order {
	repeatTime := "09:00"
	if req.RepeatTime != nil && *req.RepeatTime != "" {
		repeatTime = *req.RepeatTime
	}

	return &models.Order{
		ID:         uuid.NewString(),
		OrderType:  string(models.OrderSecondary),
		ClientName: snapshot.ClientName,
		ClientType: snapshot.ClientType,
		Pest:       snapshot.Pest,
		ObjectType: snapshot.ObjectType,
		Volume:     snapshot.Volume,
		Address:    snapshot.Address,
		Phones:     snapshot.Phones,
		Date:       *req.RepeatDate,
		Time:       repeatTime,
		BasePrice:  snapshot.BasePrice,
		Comment:    "",
		Manager:    snapshot.Manager,
		Status:     string(models.OrderInProgress),
	}
}
