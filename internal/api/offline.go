package api

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"

	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/render"
)

// offlineTokenTTL matches the backend's token lifetime.
const offlineTokenTTL = 24 * time.Hour

type offlineAccount struct {
	user domain.User
	hash [32]byte
}

type offlineUserData struct {
	cards       []domain.CustomizedCard
	invitations []domain.CustomInvitation
	orders      []domain.Order
}

// offlineBackend stands in for the REST API. State lives in memory and is lost on restart.
type offlineBackend struct {
	catalog  catalog
	renderer *render.LocalRenderer
	secret   []byte
	now      func() time.Time

	mu       sync.Mutex
	accounts map[string]*offlineAccount
	data     map[string]*offlineUserData
	nextUser int
}

func newOfflineBackend() (*offlineBackend, error) {
	cat, err := loadCatalog(catalogYAML)
	if err != nil {
		return nil, err
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("api: offline secret: %w", err)
	}
	b := &offlineBackend{
		catalog:  cat,
		secret:   secret,
		now:      time.Now,
		accounts: make(map[string]*offlineAccount),
		data:     make(map[string]*offlineUserData),
	}
	for _, u := range cat.users {
		b.accounts[u.user.Username] = &offlineAccount{user: u.user, hash: hashPassword(u.user.Username, u.password)}
	}
	b.nextUser = len(cat.users) + 1
	b.renderer = render.NewLocalRenderer(b, b)
	return b, nil
}

func hashPassword(username, password string) [32]byte {
	return sha256.Sum256([]byte(username + "\x00" + password))
}

func newID(now time.Time) domain.ID {
	return domain.ID(ulid.MustNew(ulid.Timestamp(now), rand.Reader).String())
}

func offlineError(status int, msg string) error {
	return &Error{Status: status, Message: msg}
}

func (b *offlineBackend) issueToken(username string) (string, error) {
	now := b.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(offlineTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

// authenticate resolves the token on ctx to a username.
func (b *offlineBackend) authenticate(ctx context.Context) (string, error) {
	raw := TokenFromContext(ctx)
	if raw == "" {
		return "", offlineError(http.StatusUnauthorized, "Vui lòng đăng nhập")
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return b.secret, nil }); err != nil {
		return "", offlineError(http.StatusUnauthorized, "Phiên đăng nhập không hợp lệ")
	}
	if claims.ExpiresAt == nil || !b.now().Before(claims.ExpiresAt.Time) {
		return "", offlineError(http.StatusUnauthorized, "Phiên đăng nhập đã hết hạn")
	}
	b.mu.Lock()
	_, ok := b.accounts[claims.Subject]
	b.mu.Unlock()
	if !ok {
		return "", offlineError(http.StatusUnauthorized, "Phiên đăng nhập không hợp lệ")
	}
	return claims.Subject, nil
}

// userData must be called with mu held.
func (b *offlineBackend) userData(username string) *offlineUserData {
	d, ok := b.data[username]
	if !ok {
		d = &offlineUserData{}
		b.data[username] = d
	}
	return d
}

func (b *offlineBackend) login(creds domain.Credentials) (domain.AuthResponse, error) {
	username := strings.TrimSpace(creds.Username)
	b.mu.Lock()
	acct, ok := b.accounts[username]
	b.mu.Unlock()
	want := hashPassword(username, creds.Password)
	if !ok || subtle.ConstantTimeCompare(acct.hash[:], want[:]) != 1 {
		return domain.AuthResponse{}, offlineError(http.StatusUnauthorized, "Tên đăng nhập hoặc mật khẩu không đúng")
	}
	token, err := b.issueToken(username)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return domain.AuthResponse{Token: token, Type: "Bearer", User: acct.user}, nil
}

func (b *offlineBackend) register(reg domain.Registration) (domain.User, error) {
	username := strings.TrimSpace(reg.Username)
	email := strings.TrimSpace(reg.Email)
	if username == "" || email == "" || reg.Password == "" {
		return domain.User{}, offlineError(http.StatusBadRequest, "Thiếu thông tin đăng ký")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[username]; exists {
		return domain.User{}, offlineError(http.StatusBadRequest, "Tên đăng nhập đã tồn tại")
	}
	for _, a := range b.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return domain.User{}, offlineError(http.StatusBadRequest, "Email đã được sử dụng")
		}
	}
	user := domain.User{
		ID:       domain.ID(fmt.Sprint(b.nextUser)),
		Username: username,
		Email:    email,
		FullName: strings.TrimSpace(reg.FullName),
		Phone:    strings.TrimSpace(reg.Phone),
		Role:     "USER",
	}
	b.nextUser++
	b.accounts[username] = &offlineAccount{user: user, hash: hashPassword(username, reg.Password)}
	return user, nil
}

func (b *offlineBackend) currentUser(ctx context.Context) (domain.User, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return domain.User{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[username].user, nil
}

func (b *offlineBackend) categories() []domain.Category {
	return slices.Clone(b.catalog.categories)
}

func (b *offlineBackend) templates(categoryID domain.ID, keyword string) []domain.Template {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	out := make([]domain.Template, 0, len(b.catalog.templates))
	for _, t := range b.catalog.templates {
		if !categoryID.IsZero() && t.CategoryID != categoryID {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(t.Name), keyword) &&
			!strings.Contains(strings.ToLower(t.Description), keyword) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (b *offlineBackend) template(id domain.ID) (domain.Template, error) {
	for _, t := range b.catalog.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Template{}, offlineError(http.StatusNotFound, "Không tìm thấy mẫu thiệp")
}

func (b *offlineBackend) cardTemplates(templateID domain.ID) []domain.CardTemplate {
	var out []domain.CardTemplate
	for _, ct := range b.catalog.cardTemplates {
		if ct.TemplateID == templateID {
			out = append(out, ct)
		}
	}
	return out
}

func (b *offlineBackend) cardTemplate(id domain.ID) (domain.CardTemplate, error) {
	for _, ct := range b.catalog.cardTemplates {
		if ct.ID == id {
			return ct, nil
		}
	}
	return domain.CardTemplate{}, offlineError(http.StatusNotFound, "Không tìm thấy mẫu thiệp HTML")
}

// CardTemplate satisfies render.CardTemplates.
func (b *offlineBackend) CardTemplate(_ context.Context, id domain.ID) (domain.CardTemplate, error) {
	return b.cardTemplate(id)
}

// SaveCard satisfies render.CardSaver.
func (b *offlineBackend) SaveCard(ctx context.Context, card domain.CustomizedCard) (domain.CustomizedCard, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return domain.CustomizedCard{}, err
	}
	if tpl, err := b.template(card.TemplateID); err == nil {
		card.TemplatePrice = tpl.Price
	}
	card.ID = newID(b.now())
	card.IsSaved = true
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.userData(username)
	d.cards = append(d.cards, card)
	return card, nil
}

func (b *offlineBackend) render(ctx context.Context, req domain.RenderRequest) (domain.CustomizedCard, error) {
	card, err := b.renderer.Render(ctx, req)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return domain.CustomizedCard{}, apiErr
		}
		return domain.CustomizedCard{}, offlineError(http.StatusBadRequest, err.Error())
	}
	if !req.SaveCard {
		card.ID = ""
		if tpl, err := b.template(card.TemplateID); err == nil {
			card.TemplatePrice = tpl.Price
		}
	}
	return card, nil
}

func (b *offlineBackend) savedCards(ctx context.Context) ([]domain.CustomizedCard, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.CustomizedCard, 0)
	for _, c := range b.userData(username).cards {
		if !c.IsSaved {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (b *offlineBackend) card(ctx context.Context, id domain.ID) (domain.CustomizedCard, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return domain.CustomizedCard{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.userData(username).cards {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.CustomizedCard{}, offlineError(http.StatusNotFound, "Không tìm thấy thiệp")
}

func (b *offlineBackend) deleteCard(ctx context.Context, id domain.ID) error {
	username, err := b.authenticate(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.userData(username)
	before := len(d.cards)
	d.cards = slices.DeleteFunc(d.cards, func(c domain.CustomizedCard) bool { return c.ID == id })
	if len(d.cards) == before {
		return offlineError(http.StatusNotFound, "Không tìm thấy thiệp")
	}
	return nil
}

func (b *offlineBackend) saveInvitation(ctx context.Context, inv domain.CustomInvitation) (domain.CustomInvitation, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return domain.CustomInvitation{}, err
	}
	tpl, err := b.template(inv.TemplateID)
	if err != nil {
		return domain.CustomInvitation{}, err
	}
	if strings.TrimSpace(inv.GroomName) == "" || strings.TrimSpace(inv.BrideName) == "" || strings.TrimSpace(inv.WeddingDate) == "" {
		return domain.CustomInvitation{}, offlineError(http.StatusBadRequest, "Thiếu tên cô dâu, chú rể hoặc ngày cưới")
	}
	inv.TemplateName = tpl.Name
	inv.TemplatePrice = tpl.Price
	inv.IsSaved = true

	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.userData(username)
	if inv.ID.IsZero() {
		inv.ID = newID(b.now())
		d.invitations = append(d.invitations, inv)
		return inv, nil
	}
	for i := range d.invitations {
		if d.invitations[i].ID == inv.ID {
			d.invitations[i] = inv
			return inv, nil
		}
	}
	return domain.CustomInvitation{}, offlineError(http.StatusNotFound, "Không tìm thấy thiệp mời")
}

func (b *offlineBackend) invitation(ctx context.Context, id domain.ID) (domain.CustomInvitation, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return domain.CustomInvitation{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, inv := range b.userData(username).invitations {
		if inv.ID == id {
			return inv, nil
		}
	}
	return domain.CustomInvitation{}, offlineError(http.StatusNotFound, "Không tìm thấy thiệp mời")
}

func (b *offlineBackend) listInvitations(ctx context.Context) ([]domain.CustomInvitation, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.userData(username).invitations), nil
}

func (b *offlineBackend) deleteInvitation(ctx context.Context, id domain.ID) error {
	username, err := b.authenticate(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.userData(username)
	before := len(d.invitations)
	d.invitations = slices.DeleteFunc(d.invitations, func(inv domain.CustomInvitation) bool { return inv.ID == id })
	if len(d.invitations) == before {
		return offlineError(http.StatusNotFound, "Không tìm thấy thiệp mời")
	}
	return nil
}

// priceOf resolves the unit price of an order line from the user's invitations or cards.
// Must be called with mu held.
func (b *offlineBackend) priceOf(d *offlineUserData, id domain.ID) (domain.Money, bool) {
	for _, inv := range d.invitations {
		if inv.ID == id {
			return inv.TemplatePrice, true
		}
	}
	for _, c := range d.cards {
		if c.ID == id {
			return c.TemplatePrice, true
		}
	}
	return 0, false
}

func (b *offlineBackend) createOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if len(order.OrderItems) == 0 {
		return domain.Order{}, offlineError(http.StatusBadRequest, "Đơn hàng không có sản phẩm")
	}
	if strings.TrimSpace(order.ShippingAddress) == "" || strings.TrimSpace(order.Phone) == "" {
		return domain.Order{}, offlineError(http.StatusBadRequest, "Thiếu địa chỉ giao hàng hoặc số điện thoại")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.userData(username)
	now := b.now()
	var total domain.Money
	items := make([]domain.OrderItem, 0, len(order.OrderItems))
	for _, it := range order.OrderItems {
		if it.Quantity < 1 {
			return domain.Order{}, offlineError(http.StatusBadRequest, "Số lượng không hợp lệ")
		}
		price, ok := b.priceOf(d, it.CustomInvitationID)
		if !ok {
			return domain.Order{}, offlineError(http.StatusNotFound, "Không tìm thấy thiệp trong đơn hàng")
		}
		it.UnitPrice = price
		it.Subtotal = price * domain.Money(it.Quantity)
		total += it.Subtotal
		items = append(items, it)
	}
	order.ID = newID(now)
	order.OrderCode = fmt.Sprintf("TC%s%04d", now.Format("060102"), len(d.orders)+1)
	order.OrderItems = items
	order.TotalAmount = total
	order.Status = domain.OrderPending
	order.CreatedAt = now.Format(time.RFC3339)
	d.orders = append(d.orders, order)
	return order, nil
}

func (b *offlineBackend) listOrders(ctx context.Context) ([]domain.Order, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	orders := b.userData(username).orders
	out := make([]domain.Order, 0, len(orders))
	for i := len(orders) - 1; i >= 0; i-- {
		out = append(out, orders[i])
	}
	return out, nil
}

func (b *offlineBackend) order(ctx context.Context, id domain.ID) (domain.Order, error) {
	username, err := b.authenticate(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.userData(username).orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, offlineError(http.StatusNotFound, "Không tìm thấy đơn hàng")
}
