package models

import (
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type AgreementAcceptRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type AgreementCheckResponse struct {
	Agreed   bool   `json:"agreed"`
	AgreedAt string `json:"agreed_at,omitempty"`
}

type EntryCreateRequest struct {
	Data   string           `json:"data"`
	Format string           `json:"format"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

type EntryUpdateRequest struct {
	Price  *decimal.Decimal `json:"price,omitempty"`
	Status *string          `json:"status,omitempty"`
}

type EntryResponse struct {
	ID             int64   `json:"id"`
	CardNumber     string  `json:"card_number"`
	ExpiryMonth    string  `json:"expiry_month,omitempty"`
	ExpiryYear     string  `json:"expiry_year,omitempty"`
	CVV            string  `json:"cvv,omitempty"`
	CardholderName string  `json:"cardholder_name,omitempty"`
	BankName       string  `json:"bank_name,omitempty"`
	CardBrand      string  `json:"card_brand,omitempty"`
	CardType       string  `json:"card_type,omitempty"`
	CardLevel      string  `json:"card_level,omitempty"`
	AddressLine1   string  `json:"address_line1,omitempty"`
	AddressLine2   string  `json:"address_line2,omitempty"`
	City           string  `json:"city,omitempty"`
	State          string  `json:"state,omitempty"`
	ZipCode        string  `json:"zip_code,omitempty"`
	Country        string  `json:"country,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Email          string  `json:"email,omitempty"`
	AdditionalInfo string  `json:"additional_info,omitempty"`
	DataFormat     string  `json:"data_format"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// PublicEntryResponse is the storefront view of an entry. Sensitive card
// fields are masked until the entry is bought.
type PublicEntryResponse struct {
	ID         int64   `json:"id"`
	CardBin    string  `json:"card_bin"`
	CardBrand  string  `json:"card_brand,omitempty"`
	CardType   string  `json:"card_type,omitempty"`
	CardLevel  string  `json:"card_level,omitempty"`
	BankName   string  `json:"bank_name,omitempty"`
	Country    string  `json:"country,omitempty"`
	DataFormat string  `json:"data_format"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
}

type EntryListResponse struct {
	Items  []PublicEntryResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type AdminEntryListResponse struct {
	Items  []EntryResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type BulkUploadResponse struct {
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Items   []EntryResponse `json:"items"`
}

type OrderCreateRequest struct {
	UserID         int64  `json:"user_id,omitempty"`
	TelegramUserID int64  `json:"telegram_user_id,omitempty"`
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	DataEntryID    int64  `json:"data_entry_id"`
	PaymentMethod  string `json:"payment_method"`
	CryptoAddress  string `json:"crypto_address,omitempty"`
	InvoiceID      string `json:"invoice_id,omitempty"`
}

type OrderUpdateRequest struct {
	PaymentStatus *string `json:"payment_status,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	CryptoAddress *string `json:"crypto_address,omitempty"`
	InvoiceID     *string `json:"invoice_id,omitempty"`
}

type OrderResponse struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id,omitempty"`
	TelegramUserID int64   `json:"telegram_user_id,omitempty"`
	DataEntryID    int64   `json:"data_entry_id"`
	PaymentMethod  string  `json:"payment_method"`
	PaymentStatus  string  `json:"payment_status"`
	TotalAmount    float64 `json:"total_amount"`
	CryptoAddress  string  `json:"crypto_address,omitempty"`
	InvoiceID      string  `json:"invoice_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type OrderCreateResponse struct {
	Order         OrderResponse `json:"order"`
	Entry         EntryResponse `json:"entry"`
	UserNotified  bool          `json:"user_notified"`
	AdminNotified bool          `json:"admin_notified"`
}

type OrderListResponse struct {
	Items  []OrderResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type UserCreateRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

type UserUpdateRequest struct {
	Status        *string          `json:"status,omitempty"`
	WalletBalance *decimal.Decimal `json:"wallet_balance,omitempty"`
}

type UserResponse struct {
	ID            int64   `json:"id"`
	TelegramID    int64   `json:"telegram_id"`
	Username      string  `json:"username,omitempty"`
	FirstName     string  `json:"first_name,omitempty"`
	LastName      string  `json:"last_name,omitempty"`
	WalletBalance float64 `json:"wallet_balance"`
	TotalSpent    float64 `json:"total_spent"`
	TotalOrders   int     `json:"total_orders"`
	Status        string  `json:"status"`
	AgreedToTerms bool    `json:"agreed_to_terms"`
	AgreedAt      string  `json:"agreed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type UserListResponse struct {
	Items  []UserResponse `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type WalletTransactionRequest struct {
	UserID      int64           `json:"user_id"`
	OrderID     int64           `json:"order_id,omitempty"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type WalletTransactionResponse struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	OrderID     int64   `json:"order_id,omitempty"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

type WalletTransactionCreateResponse struct {
	Transaction WalletTransactionResponse `json:"transaction"`
	User        UserResponse              `json:"user"`
}

type WalletTransactionListResponse struct {
	Items  []WalletTransactionResponse `json:"items"`
	Total  int                         `json:"total"`
	Limit  int                         `json:"limit"`
	Offset int                         `json:"offset"`
}

type SalesStatsResponse struct {
	TotalOrders   int     `json:"total_orders"`
	TotalSales    float64 `json:"total_sales"`
	OrdersToday   int     `json:"orders_today"`
	SalesToday    float64 `json:"sales_today"`
	PendingOrders int     `json:"pending_orders"`
}

type StockStatsResponse struct {
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Sold      int `json:"sold"`
}

type UserStatsResponse struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
	BannedUsers int `json:"banned_users"`
	NewToday    int `json:"new_today"`
}

type BotSetupResponse struct {
	BotUsername string `json:"bot_username"`
	WebhookURL  string `json:"webhook_url"`
}

func NewEntryResponse(entry *entries.Entry) EntryResponse {
	card := entry.Card()

	return EntryResponse{
		ID:             entry.ID(),
		CardNumber:     card.Number,
		ExpiryMonth:    card.ExpiryMonth,
		ExpiryYear:     card.ExpiryYear,
		CVV:            card.CVV,
		CardholderName: card.CardholderName,
		BankName:       card.BankName,
		CardBrand:      card.Brand,
		CardType:       card.Type,
		CardLevel:      card.Level,
		AddressLine1:   card.AddressLine1,
		AddressLine2:   card.AddressLine2,
		City:           card.City,
		State:          card.State,
		ZipCode:        card.ZipCode,
		Country:        card.Country,
		Phone:          card.Phone,
		Email:          card.Email,
		AdditionalInfo: card.AdditionalInfo,
		DataFormat:     string(entry.DataFormat()),
		Price:          entry.Price().InexactFloat64(),
		Status:         entry.Status().String(),
		CreatedAt:      entry.CreatedAt().Format(time.RFC3339),
		UpdatedAt:      entry.UpdatedAt().Format(time.RFC3339),
	}
}

func NewPublicEntryResponse(entry *entries.Entry) PublicEntryResponse {
	card := entry.Card()

	bin := card.Number
	if len(bin) > 6 {
		bin = bin[:6]
	}

	return PublicEntryResponse{
		ID:         entry.ID(),
		CardBin:    bin,
		CardBrand:  card.Brand,
		CardType:   card.Type,
		CardLevel:  card.Level,
		BankName:   card.BankName,
		Country:    card.Country,
		DataFormat: string(entry.DataFormat()),
		Price:      entry.Price().InexactFloat64(),
		Status:     entry.Status().String(),
	}
}

func NewOrderResponse(ord *orders.Order) OrderResponse {
	return OrderResponse{
		ID:             ord.ID(),
		UserID:         ord.UserID(),
		TelegramUserID: ord.TelegramUserID(),
		DataEntryID:    ord.DataEntryID(),
		PaymentMethod:  ord.PaymentMethod().String(),
		PaymentStatus:  ord.PaymentStatus().String(),
		TotalAmount:    ord.TotalAmount().InexactFloat64(),
		CryptoAddress:  ord.CryptoAddress(),
		InvoiceID:      ord.InvoiceID(),
		CreatedAt:      ord.CreatedAt().Format(time.RFC3339),
		UpdatedAt:      ord.UpdatedAt().Format(time.RFC3339),
	}
}

func NewUserResponse(usr *users.User) UserResponse {
	resp := UserResponse{
		ID:            usr.ID(),
		TelegramID:    usr.TelegramID(),
		Username:      usr.Profile().Username,
		FirstName:     usr.Profile().FirstName,
		LastName:      usr.Profile().LastName,
		WalletBalance: usr.WalletBalance().InexactFloat64(),
		TotalSpent:    usr.TotalSpent().InexactFloat64(),
		TotalOrders:   usr.TotalOrders(),
		Status:        usr.Status().String(),
		AgreedToTerms: usr.AgreedToTerms(),
		CreatedAt:     usr.CreatedAt().Format(time.RFC3339),
		UpdatedAt:     usr.UpdatedAt().Format(time.RFC3339),
	}

	if !usr.AgreedAt().IsZero() {
		resp.AgreedAt = usr.AgreedAt().Format(time.RFC3339)
	}

	return resp
}

func NewWalletTransactionResponse(tx *wallet.Transaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		ID:          tx.ID(),
		UserID:      tx.UserID(),
		OrderID:     tx.OrderID(),
		Type:        tx.Type().String(),
		Amount:      tx.Amount().InexactFloat64(),
		Description: tx.Description(),
		Status:      tx.Status(),
		CreatedAt:   tx.CreatedAt().Format(time.RFC3339),
	}
}
