package mongodb

import "go.mongodb.org/mongo-driver/bson"

// byUserID is the canonical lookup key for every user operation.
func byUserID(userID int64) bson.D {
	return bson.D{{Key: "userId", Value: userID}}
}

// activeOnly narrows a filter to active users. Every read and write path goes through it.
func activeOnly(filter bson.D) bson.D {
	out := make(bson.D, 0, len(filter)+1)
	out = append(out, filter...)
	return append(out, bson.E{Key: "isActive", Value: true})
}

// withoutCredential is the projection used by every read that returns a whole user.
func withoutCredential() bson.D {
	return bson.D{{Key: "password", Value: 0}}
}

// ordersOnly projects a user document down to its orders array.
func ordersOnly() bson.D {
	return bson.D{{Key: "_id", Value: 0}, {Key: "orders", Value: 1}}
}
