package domain

import (
	"context"
	"time"

	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Transactor runs fn in a transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	DeleteItemsByOwner(ctx context.Context, ownerID int64) (int64, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, bool, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, bool, error)
	GetItemsByRequestID(ctx context.Context, requestID int64) ([]*models.Item, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItemID(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	FindBookings(ctx context.Context, filter models.BookingFilter, page models.Page) ([]*models.Booking, bool, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetCompletedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (*models.Booking, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, bool, error)
}

type SyncQueue interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// UserCache is a read-through cache in front of the user table.
// GetUser returns nil, nil on a miss.
type UserCache interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	SetUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// RateLimiter reports whether key may perform one more request.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, booking *models.Booking) error
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Checker is the façade services use to look at entities owned by other services.
type Checker interface {
	IsUserExistsForStrictCheck(ctx context.Context, userID int64) error
	IsUserExistsForValidation(ctx context.Context, userID int64) error
	IsAvailableItem(ctx context.Context, itemID int64) (bool, error)
	IsItemOwner(ctx context.Context, itemID, userID int64) (bool, error)
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetLastBooking(ctx context.Context, itemID int64) (*models.BookingShort, error)
	GetNextBooking(ctx context.Context, itemID int64) (*models.BookingShort, error)
	GetBookingWithUserBookedItem(ctx context.Context, itemID, userID int64) (*models.BookingShort, error)
	GetCommentsByItemID(ctx context.Context, itemID int64) ([]*models.Comment, error)
	GetItemsByRequestID(ctx context.Context, requestID int64) ([]*models.Item, error)
	DeleteItemsByUser(ctx context.Context, userID int64) error
}

// UserLookup, ItemLookup and BookingLookup are the slices of the services the checker delegates to.
type UserLookup interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type ItemLookup interface {
	FindItem(ctx context.Context, id int64) (*models.Item, error)
	ItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
	Comments(ctx context.Context, itemID int64) ([]*models.Comment, error)
	DeleteItemsByOwner(ctx context.Context, ownerID int64) error
}

type BookingLookup interface {
	LastBooking(ctx context.Context, itemID int64) (*models.Booking, error)
	NextBooking(ctx context.Context, itemID int64) (*models.Booking, error)
	CompletedBooking(ctx context.Context, itemID, userID int64) (*models.Booking, error)
}
