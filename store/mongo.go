package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/junaidrashid-git/cart-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      primitive.ObjectID `bson:"user"`
	Products  []lineItemDocument `bson:"products"`
	Version   int64              `bson:"version"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type lineItemDocument struct {
	Product  primitive.ObjectID `bson:"product"`
	Quantity int                `bson:"quantity"`
}

type productDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Price       float64             `bson:"price"`
	Description string              `bson:"description"`
	Discount    float64             `bson:"discount"`
	Total       float64             `bson:"total"`
	Image       string              `bson:"image"`
	Image2      string              `bson:"image2"`
	Category    *primitive.ObjectID `bson:"category,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

// Mongo stores carts and products as documents. Ids and references are ObjectIDs.
type Mongo struct {
	client   *mongo.Client
	carts    *mongo.Collection
	products *mongo.Collection
}

// OpenMongo connects, pings and makes sure carts.user is uniquely indexed.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:   client,
		carts:    db.Collection("carts"),
		products: db.Collection("products"),
	}

	_, err = m.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_unique"),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create carts.user index: %w", err)
	}
	return m, nil
}

func (m *Mongo) Carts() CartStore { return mongoCarts{m.carts} }
func (m *Mongo) Products() ProductStore { return mongoProducts{m.products} }
func (m *Mongo) Close(ctx context.Context) error { return m.client.Disconnect(ctx) }

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func toLineItemDocuments(items []models.LineItem) ([]lineItemDocument, error) {
	out := make([]lineItemDocument, 0, len(items))
	for _, item := range items {
		oid, err := parseObjectID(item.Product)
		if err != nil {
			return nil, err
		}
		out = append(out, lineItemDocument{Product: oid, Quantity: item.Quantity})
	}
	return out, nil
}

func (d cartDocument) model() models.Cart {
	items := make([]models.LineItem, 0, len(d.Products))
	for _, item := range d.Products {
		items = append(items, models.LineItem{Product: item.Product.Hex(), Quantity: item.Quantity})
	}
	return models.Cart{
		ID:        d.ID.Hex(),
		User:      d.User.Hex(),
		Products:  items,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type mongoCarts struct{ coll *mongo.Collection }

// Canonical lower-cases the hex form, matching what ObjectID.Hex returns.
func (s mongoCarts) Canonical(product string) (string, error) {
	oid, err := parseObjectID(product)
	if err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

func (s mongoCarts) List(ctx context.Context) ([]models.Cart, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []cartDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Cart, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s mongoCarts) findOne(ctx context.Context, filter bson.M) (*models.Cart, error) {
	var doc cartDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c := doc.model()
	return &c, nil
}

// Get treats a malformed id as a cart that cannot exist.
func (s mongoCarts) Get(ctx context.Context, id string) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s mongoCarts) GetByUser(ctx context.Context, user string) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(user)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"user": oid})
}

func (s mongoCarts) Create(ctx context.Context, cart *models.Cart) error {
	user, err := parseObjectID(cart.User)
	if err != nil {
		return err
	}
	items, err := toLineItemDocuments(cart.Products)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := cartDocument{
		ID:        primitive.NewObjectID(),
		User:      user,
		Products:  items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	*cart = doc.model()
	return nil
}

func (s mongoCarts) findOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (*models.Cart, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc cartDocument
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	c := doc.model()
	return &c, nil
}

// versionFilter matches the cart at version. Carts written before versioning
// have no version field and count as version 0.
func versionFilter(id primitive.ObjectID, version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": id, "$or": bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}
	return bson.M{"_id": id, "version": version}
}

func (s mongoCarts) UpdateLineItems(ctx context.Context, id string, version int64, items []models.LineItem) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	docs, err := toLineItemDocuments(items)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{"products": docs, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	c, err := s.findOneAndUpdate(ctx, versionFilter(oid, version), update)
	if errors.Is(err, ErrNotFound) {
		// Either the cart is gone or someone else bumped the version.
		if _, getErr := s.Get(ctx, id); getErr == nil {
			return nil, ErrConflict
		}
	}
	return c, err
}

func (s mongoCarts) Replace(ctx context.Context, id string, patch models.CartPatch) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.User != nil {
		user, err := parseObjectID(*patch.User)
		if err != nil {
			return nil, err
		}
		set["user"] = user
	}
	if patch.Products != nil {
		docs, err := toLineItemDocuments(*patch.Products)
		if err != nil {
			return nil, err
		}
		set["products"] = docs
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set, "$inc": bson.M{"version": 1}})
}

func (s mongoCarts) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d productDocument) model() models.Product {
	p := models.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Price:       d.Price,
		Description: d.Description,
		Discount:    d.Discount,
		Total:       d.Total,
		Image:       d.Image,
		Image2:      d.Image2,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Category != nil {
		c := d.Category.Hex()
		p.Category = &c
	}
	return p
}

func toProductDocument(p *models.Product) (productDocument, error) {
	doc := productDocument{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Discount:    p.Discount,
		Total:       p.Total,
		Image:       p.Image,
		Image2:      p.Image2,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		oid, err := parseObjectID(*p.Category)
		if err != nil {
			return doc, err
		}
		doc.Category = &oid
	}
	return doc, nil
}

type mongoProducts struct{ coll *mongo.Collection }

func (s mongoProducts) List(ctx context.Context) ([]models.Product, error) {
	return s.find(ctx, bson.D{})
}

func (s mongoProducts) find(ctx context.Context, filter any) ([]models.Product, error) {
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s mongoProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc productDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := doc.model()
	return &p, nil
}

// GetMany skips ids that are not valid ObjectIDs, they cannot match anything.
func (s mongoProducts) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	out := make(map[string]models.Product, len(oids))
	if len(oids) == 0 {
		return out, nil
	}
	products, err := s.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s mongoProducts) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	doc, err := toProductDocument(p)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (s mongoProducts) Update(ctx context.Context, p *models.Product) error {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	doc, err := toProductDocument(p)
	if err != nil {
		return err
	}

	set := bson.M{
		"title":       doc.Title,
		"price":       doc.Price,
		"description": doc.Description,
		"discount":    doc.Discount,
		"total":       doc.Total,
		"image":       doc.Image,
		"image2":      doc.Image2,
		"updatedAt":   doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.Category != nil {
		set["category"] = doc.Category
	} else {
		update["$unset"] = bson.M{"category": ""}
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s mongoProducts) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
