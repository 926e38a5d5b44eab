package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	usermodel "AProject/module/user/model"
	errs "AProject/tools/errs"
	ids "AProject/tools/ids"
)

// UserService is the user directory: lookups by id and username, plus
// account creation for the registration endpoint.
type UserService struct {
	coll *mongo.Collection
}

func NewUserService(db *mongo.Database) *UserService {
	return &UserService{coll: db.Collection(usermodel.UserTableName)}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*usermodel.User, error) {
	var u usermodel.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WithDetail("user")
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find user by id", "id", id)
	}
	return &u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	var u usermodel.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WithDetail("user")
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find user by username", "username", username)
	}
	return &u, nil
}

// SavePublicPrivateKeys stores the user's encryption key pair. The private
// key arrives already encrypted client-side; this layer never sees it in
// the clear.
func (s *UserService) SavePublicPrivateKeys(ctx context.Context, userID int64, publicKey, encryptedPrivateKey string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"public_key":            publicKey,
		"encrypted_private_key": encryptedPrivateKey,
	}})
	if err != nil {
		return errs.WrapMsg(err, "save keys", "id", userID)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("user")
	}
	return nil
}

// Create inserts a new account. Password must already be hashed.
func (s *UserService) Create(ctx context.Context, username, email, passwordHash, serverDomain string) (*usermodel.User, error) {
	if _, err := s.GetByUsername(ctx, username); err == nil {
		return nil, errs.ErrRecordIsExist.WithDetail("username taken")
	}
	u := &usermodel.User{
		ID:           ids.Generate(),
		Username:     username,
		Email:        email,
		Password:     passwordHash,
		ServerDomain: serverDomain,
		CreatedAt:    time.Now(),
	}
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return nil, errs.WrapMsg(err, "insert user", "username", username)
	}
	return u, nil
}
