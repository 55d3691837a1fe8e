package models

// UserDoc es una fila de u.user tal como queda en la colección users.
type UserDoc struct {
	UserID     int    `json:"userId" bson:"user_id"`
	Age        int    `json:"age" bson:"age"`
	Gender     string `json:"gender" bson:"gender"`
	Occupation string `json:"occupation" bson:"occupation"`
	ZipCode    string `json:"zipCode" bson:"zip_code"`
}
