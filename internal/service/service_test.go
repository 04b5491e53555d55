package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gestao-marketplace/internal/core/auth"
	"gestao-marketplace/internal/core/cache"
	"gestao-marketplace/internal/core/storage"
	"gestao-marketplace/internal/domain"
	"gestao-marketplace/internal/repo"
	"gestao-marketplace/internal/testutil"
	"gestao-marketplace/pkg/utils"
)

type fixture struct {
	users    *UserService
	auth     *AuthService
	products *ProductService
	store    *storage.Memory
	jwt      *auth.JWTer
	userRepo *repo.UserRepo
	prodRepo *repo.ProductRepo
	db       *gorm.DB
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, c *cache.Cache) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{
		db:       db,
		store:    storage.NewMemory("https://cdn.test"),
		jwt:      &auth.JWTer{Secret: []byte("test-secret"), Issuer: "marketplace"},
		userRepo: repo.NewUserRepo(db),
		prodRepo: repo.NewProductRepo(db),
	}
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	opt := Options{Cache: c, Now: func() time.Time { return fixedNow }}
	f.users = NewUserService(f.userRepo, hasher, f.store, opt)
	f.auth = NewAuthService(f.users, hasher, f.jwt, nil)
	f.products = NewProductService(f.prodRepo, f.users, f.store, opt)
	return f
}

func newCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewWithClient(rdb, "test:"), mr
}

func signUpInput(email, phone string) domain.CreateUserInput {
	return domain.CreateUserInput{Name: "A", Email: email, Phone: phone, Password: "Abc12345!"}
}

func ptr[T any](v T) *T { return &v }

func requireKind(t *testing.T, want domain.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, domain.KindOf(err), "err: %v", err)
}

func countUsers(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.User{}).Count(&n).Error)
	return n
}

func TestSignUpThenDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.auth.SignUp(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", res.User.Email)
	require.NotEmpty(t, res.User.ID)

	sub, err := f.jwt.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, sub)

	tt := []struct {
		name  string
		email string
		phone string
	}{
		{name: "Same Email", email: "a@x.com", phone: "2"},
		{name: "Same Phone", email: "b@x.com", phone: "1"},
		{name: "Both", email: "a@x.com", phone: "1"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.auth.SignUp(ctx, signUpInput(tc.email, tc.phone))
			requireKind(t, domain.KindDuplicate, err)
			require.Nil(t, res)
			require.Equal(t, int64(1), countUsers(t, f))
		})
	}
}

func TestCreateUserStoresHashOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	u, err := f.users.Create(ctx, signUpInput(" maria@x.com ", "55"))
	require.NoError(t, err)
	require.Equal(t, "maria@x.com", u.Email)
	require.NotEqual(t, "Abc12345!", u.PasswordHash)
	require.True(t, utils.NewPasswordHasher(bcrypt.MinCost).Verify("Abc12345!", u.PasswordHash))
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tt := []struct {
		name string
		in   domain.CreateUserInput
		msg  string
	}{
		{name: "Weak Password", in: domain.CreateUserInput{Name: "A", Email: "a@x.com", Phone: "1", Password: "abc12345"}, msg: "password"},
		{name: "Bad Email", in: domain.CreateUserInput{Name: "A", Email: "nope", Phone: "1", Password: "Abc12345!"}, msg: "email must be a valid email"},
		{name: "Missing Name", in: domain.CreateUserInput{Email: "a@x.com", Phone: "1", Password: "Abc12345!"}, msg: "name is required"},
		{name: "Blank Phone", in: domain.CreateUserInput{Name: "A", Email: "a@x.com", Phone: "  ", Password: "Abc12345!"}, msg: "phone is required"},
		{name: "Long Password", in: domain.CreateUserInput{Name: "A", Email: "a@x.com", Phone: "1", Password: "Abc1!" + strings.Repeat("a", 75)}, msg: "password must have at most 72 characters"},
		{name: "Multibyte Password Over 72 Bytes", in: domain.CreateUserInput{Name: "A", Email: "a@x.com", Phone: "1", Password: strings.Repeat("é", 40) + "Ab1!"}, msg: "password must have at most 72 bytes"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Create(ctx, tc.in)
			requireKind(t, domain.KindValidation, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
	require.Equal(t, int64(0), countUsers(t, f))
}

func TestSignInIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.auth.SignUp(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)

	_, wrongPw := f.auth.SignIn(ctx, SignInInput{Email: "a@x.com", Password: "wrong"})
	_, noUser := f.auth.SignIn(ctx, SignInInput{Email: "ghost@x.com", Password: "Abc12345!"})
	requireKind(t, domain.KindUnauthorized, wrongPw)
	requireKind(t, domain.KindUnauthorized, noUser)
	require.Equal(t, "invalid credentials", wrongPw.Error())
	require.Equal(t, wrongPw.Error(), noUser.Error())

	res, err := f.auth.SignIn(ctx, SignInInput{Email: "a@x.com", Password: "Abc12345!"})
	require.NoError(t, err)
	require.Equal(t, "a@x.com", res.User.Email)
	sub, err := f.auth.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, sub)

	_, err = f.auth.Verify("garbage")
	requireKind(t, domain.KindUnauthorized, err)
}

func TestFindOneUser(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	f := newFixture(t, c)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)

	first, err := f.users.FindOne(ctx, u.ID)
	require.NoError(t, err)
	second, err := f.users.FindOne(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Email, second.Email)
	require.Empty(t, second.PasswordHash)
	require.True(t, mr.Exists("test:user:"+u.ID))

	_, err = f.users.FindOne(ctx, "missing")
	requireKind(t, domain.KindNotFound, err)
	require.False(t, mr.Exists("test:user:missing"))
}

var keyPattern = regexp.MustCompile(`^(users/avatars|products/images)/[0-9a-f-]{36}-\d+\.[a-z0-9]+$`)

func TestAttachAvatar(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	f := newFixture(t, c)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)

	// 先把旧值放进缓存，上传后应被清掉
	_, err = f.users.FindOne(ctx, u.ID)
	require.NoError(t, err)

	body := []byte("png-bytes")
	res, err := f.users.AttachAvatar(ctx, u.ID, &Upload{Filename: "me.PNG", ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body)})
	require.NoError(t, err)

	key := strings.TrimPrefix(res.ImageURL, "https://cdn.test/")
	require.Regexp(t, keyPattern, key)
	require.Equal(t, "users/avatars/"+u.ID+"-1714564800000.png", key)
	got, ct, ok := f.store.Get(key)
	require.True(t, ok)
	require.Equal(t, body, got)
	require.Equal(t, "image/png", ct)
	require.False(t, mr.Exists("test:user:"+u.ID))

	after, err := f.users.FindOne(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, after.AvatarURL)
	require.Equal(t, res.ImageURL, *after.AvatarURL)
}

func TestAttachAvatarErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)

	_, err = f.users.AttachAvatar(ctx, "missing", &Upload{Filename: "a.png", Size: 1, Body: strings.NewReader("x")})
	requireKind(t, domain.KindNotFound, err)

	_, err = f.users.AttachAvatar(ctx, u.ID, nil)
	requireKind(t, domain.KindValidation, err)

	_, err = f.users.AttachAvatar(ctx, u.ID, &Upload{Filename: "big.png", Size: DefaultMaxUploadBytes + 1, Body: strings.NewReader("x")})
	requireKind(t, domain.KindPayloadTooLarge, err)

	require.Empty(t, f.store.Keys())
}

func createProduct(t *testing.T, f *fixture, userID, title string) *domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), userID, domain.CreateProductInput{
		Title: title, Price: ptr(int64(19990)), Description: "d", Category: domain.CategoryMovel,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProductUnknownOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.products.Create(ctx, "no-such-user", domain.CreateProductInput{
		Title: "Chair", Price: ptr(int64(19990)), Description: "d", Category: domain.CategoryMovel,
	})
	requireKind(t, domain.KindNotFound, err)

	ps, err := f.products.FindAll(ctx, "no-such-user", domain.ProductFilter{})
	require.NoError(t, err)
	require.Empty(t, ps)
	var n int64
	require.NoError(t, f.db.Model(&domain.Product{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)

	p := createProduct(t, f, u.ID, "Chair")
	require.Equal(t, domain.StatusListed, p.Status)
	require.Equal(t, u.ID, p.UserID)
	require.Nil(t, p.ImageURL)

	sold := domain.StatusSold
	img := "https://img.test/c.png"
	p2, err := f.products.Create(ctx, u.ID, domain.CreateProductInput{
		Title: "Lamp", Price: ptr(int64(0)), Description: "d", Category: domain.CategoryUtensilio, Status: &sold, ImageURL: &img,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusSold, p2.Status)
	require.Equal(t, img, *p2.ImageURL)

	_, err = f.products.Create(ctx, u.ID, domain.CreateProductInput{Title: "X", Price: ptr(int64(-1)), Description: "d", Category: domain.CategoryMovel})
	requireKind(t, domain.KindValidation, err)
	_, err = f.products.Create(ctx, u.ID, domain.CreateProductInput{Title: "X", Description: "d", Category: domain.CategoryMovel})
	requireKind(t, domain.KindValidation, err)
	require.Contains(t, err.Error(), "price is required")
	_, err = f.products.Create(ctx, u.ID, domain.CreateProductInput{Title: "X", Price: ptr(int64(1)), Description: "d", Category: "CARRO"})
	requireKind(t, domain.KindValidation, err)
}

func TestUpdateProductPartial(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)
	f := newFixture(t, c)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)
	p := createProduct(t, f, u.ID, "Chair")

	// 预热缓存
	_, err = f.products.FindOne(ctx, p.ID)
	require.NoError(t, err)

	price := int64(5000)
	got, err := f.products.Update(ctx, p.ID, domain.UpdateProductInput{Price: &price})
	require.NoError(t, err)
	require.Equal(t, int64(5000), got.Price)
	require.Equal(t, p.Title, got.Title)
	require.Equal(t, p.Description, got.Description)
	require.Equal(t, p.Category, got.Category)
	require.Equal(t, p.Status, got.Status)
	require.Equal(t, p.UserID, got.UserID)
	require.Nil(t, got.ImageURL)

	again, err := f.products.FindOne(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5000), again.Price)

	same, err := f.products.Update(ctx, p.ID, domain.UpdateProductInput{})
	require.NoError(t, err)
	require.Equal(t, got.Price, same.Price)
	require.Equal(t, got.Title, same.Title)

	_, err = f.products.Update(ctx, "missing", domain.UpdateProductInput{Price: &price})
	requireKind(t, domain.KindNotFound, err)

	neg := int64(-5)
	_, err = f.products.Update(ctx, p.ID, domain.UpdateProductInput{Price: &neg})
	requireKind(t, domain.KindValidation, err)
}

func TestUpdateStatusUnconditional(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)
	p := createProduct(t, f, u.ID, "Chair")

	for _, st := range []domain.Status{domain.StatusSold, domain.StatusListed, domain.StatusCanceled, domain.StatusSold} {
		got, err := f.products.UpdateStatus(ctx, p.ID, domain.UpdateStatusInput{Status: st})
		require.NoError(t, err)
		require.Equal(t, st, got.Status)
	}

	_, err = f.products.UpdateStatus(ctx, p.ID, domain.UpdateStatusInput{Status: "PERDIDO"})
	requireKind(t, domain.KindValidation, err)
	_, err = f.products.UpdateStatus(ctx, "missing", domain.UpdateStatusInput{Status: domain.StatusSold})
	requireKind(t, domain.KindNotFound, err)
}

func TestFindAllAndFindOneProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)
	p := createProduct(t, f, u.ID, "Cadeira")
	createProduct(t, f, u.ID, "Mesa")

	ps, err := f.products.FindAll(ctx, u.ID, domain.ProductFilter{Title: "cad"})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.Equal(t, p.ID, ps[0].ID)

	ps, err = f.products.FindAll(ctx, u.ID, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, ps, 2)

	a, err := f.products.FindOne(ctx, p.ID)
	require.NoError(t, err)
	b, err := f.products.FindOne(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, a, b)

	_, err = f.products.FindOne(ctx, "missing")
	requireKind(t, domain.KindNotFound, err)
}

type failingStore struct{}

func (failingStore) Upload(context.Context, storage.Object) (string, error) {
	return "", errors.New("bucket unavailable")
}

func TestAttachImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	u, err := f.users.Create(ctx, signUpInput("a@x.com", "1"))
	require.NoError(t, err)
	p := createProduct(t, f, u.ID, "Chair")

	res, err := f.products.AttachImage(ctx, p.ID, &Upload{Filename: "chair.jpg", ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("jpg")})
	require.NoError(t, err)
	key := strings.TrimPrefix(res.ImageURL, "https://cdn.test/")
	require.Regexp(t, keyPattern, key)
	require.True(t, strings.HasPrefix(key, "products/images/"+p.ID+"-"))
	require.True(t, strings.HasSuffix(key, ".jpg"))

	got, err := f.products.FindOne(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, res.ImageURL, *got.ImageURL)

	_, err = f.products.AttachImage(ctx, "missing", &Upload{Filename: "a.jpg", Size: 1, Body: strings.NewReader("x")})
	requireKind(t, domain.KindNotFound, err)
	_, err = f.products.AttachImage(ctx, p.ID, &Upload{Filename: "a.jpg"})
	requireKind(t, domain.KindValidation, err)
	_, err = f.products.AttachImage(ctx, p.ID, &Upload{Filename: "a.jpg", Size: 3 << 20, Body: strings.NewReader("x")})
	requireKind(t, domain.KindPayloadTooLarge, err)

	broken := NewProductService(f.prodRepo, f.users, failingStore{}, Options{})
	_, err = broken.AttachImage(ctx, p.ID, &Upload{Filename: "b.jpg", Size: 1, Body: strings.NewReader("x")})
	require.Error(t, err)
	require.Equal(t, domain.KindInternal, domain.KindOf(err))
	got, err = f.products.FindOne(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, res.ImageURL, *got.ImageURL)
}
