package stubserver

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Prediction is the top class and its probability
type Prediction struct {
	Label      string
	Confidence float64
}

// Classifier predicts a leaf class from raw image bytes
type Classifier interface {
	Classify(data []byte) (Prediction, error)
}

// ClassifierFunc adapts a function to Classifier
type ClassifierFunc func(data []byte) (Prediction, error)

// Classify calls f
func (f ClassifierFunc) Classify(data []byte) (Prediction, error) {
	return f(data)
}

// HashClassifier derives a stable prediction from the image digest, so the
// same picture always gets the same diagnosis
type HashClassifier struct{}

// Classify picks a class and a confidence in [0.35, 1.0) from the SHA-256 of data
func (HashClassifier) Classify(data []byte) (Prediction, error) {
	if len(data) == 0 {
		return Prediction{}, fmt.Errorf("empty image")
	}
	sum := sha256.Sum256(data)

	index := binary.BigEndian.Uint32(sum[0:4]) % uint32(len(ClassNames))
	fraction := float64(binary.BigEndian.Uint16(sum[4:6])) / 65536.0

	return Prediction{
		Label:      ClassNames[index],
		Confidence: 0.35 + fraction*0.65,
	}, nil
}

// Fixed always returns the same prediction
func Fixed(label string, confidence float64) Classifier {
	return ClassifierFunc(func([]byte) (Prediction, error) {
		return Prediction{Label: label, Confidence: confidence}, nil
	})
}
