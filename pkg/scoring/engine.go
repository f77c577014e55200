package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownModule is returned when no model is registered under a module key.
var ErrUnknownModule = errors.New("unknown module")

// Model is the interface that all prediction modules implement.
type Model interface {
	// Key returns the machine-readable module identifier.
	Key() Module
	// Name returns the human-readable module name.
	Name() string
	// Category returns the group the module belongs to.
	Category() Category
	// Predict decodes and validates a JSON input record, then scores it.
	Predict(raw json.RawMessage) (Result, error)
}

// typedModel adapts a pure prediction function to the Model interface.
type typedModel[T validator] struct {
	key      Module
	name     string
	category Category
	required []string
	prepare  func(*T)
	predict  func(T) Result
}

func (m *typedModel[T]) Key() Module        { return m.key }
func (m *typedModel[T]) Name() string       { return m.name }
func (m *typedModel[T]) Category() Category { return m.category }

func (m *typedModel[T]) Predict(raw json.RawMessage) (Result, error) {
	in, err := decodeInput[T](m.key, raw, m.required)
	if err != nil {
		return Result{}, err
	}
	if m.prepare != nil {
		m.prepare(&in)
	}
	if err := in.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && ve.Module == "" {
			ve.Module = m.key
		}
		return Result{}, err
	}
	return m.predict(in), nil
}

// Registry maps module keys to models. The listing order is registration order.
type Registry struct {
	models []Model
	byKey  map[Module]Model
}

// NewRegistry creates a registry with the given models. A later model replaces an
// earlier one with the same key.
func NewRegistry(models ...Model) *Registry {
	r := &Registry{byKey: make(map[Module]Model, len(models))}
	for _, m := range models {
		if _, dup := r.byKey[m.Key()]; dup {
			for i := range r.models {
				if r.models[i].Key() == m.Key() {
					r.models[i] = m
				}
			}
		} else {
			r.models = append(r.models, m)
		}
		r.byKey[m.Key()] = m
	}
	return r
}

// DefaultRegistry returns a registry holding every built-in module.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultModels()...)
}

// DefaultModels returns the built-in modules in presentation order.
func DefaultModels() []Model {
	return []Model{
		&typedModel[UPIFraudInput]{
			key: ModuleUPIFraud, name: "UPI fraud detection", category: CategoryFraud,
			required: []string{"amount"},
			predict:  PredictUPIFraud,
		},
		&typedModel[CreditCardInput]{
			key: ModuleCreditCardFraud, name: "Credit card fraud detection", category: CategoryFraud,
			required: []string{"amount", "isInternational", "previousTransactions"},
			predict:  PredictCreditCardFraud,
		},
		&typedModel[PhishingInput]{
			key: ModulePhishingURL, name: "Phishing URL detection", category: CategoryFraud,
			required: []string{"url", "hasSuspiciousTLD", "hasHTTPS"},
			prepare: func(in *PhishingInput) {
				if in.URLLength == 0 {
					in.URLLength = textLen(in.URL)
				}
			},
			predict: PredictPhishingURL,
		},
		&typedModel[FakeNewsInput]{
			key: ModuleFakeNews, name: "Fake news detection", category: CategoryContent,
			required: []string{"headline"},
			predict:  PredictFakeNews,
		},
		&typedModel[FakeReviewInput]{
			key: ModuleFakeReview, name: "Fake review detection", category: CategoryContent,
			required: []string{"reviewText", "rating", "reviewerHistory"},
			predict:  PredictFakeReview,
		},
		&typedModel[CyberbullyingInput]{
			key: ModuleCyberbullying, name: "Cyberbullying detection", category: CategoryContent,
			required: []string{"message", "senderReputation"},
			predict:  PredictCyberbullying,
		},
		&typedModel[StressInput]{
			key: ModuleStress, name: "Stress level analysis", category: CategoryHealth,
			required: []string{"sleepHours", "workHours", "exerciseMinutes", "socialInteraction"},
			predict:  PredictStress,
		},
		&typedModel[DiabetesInput]{
			key: ModuleDiabetes, name: "Diabetes risk screening", category: CategoryHealth,
			required: []string{"age", "bmi", "familyHistory", "physicalActivity", "bloodPressure"},
			predict:  PredictDiabetesRisk,
		},
		&typedModel[CropInput]{
			key: ModuleCrop, name: "Crop recommendation", category: CategoryEnvironment,
			required: []string{"nitrogen", "phosphorus", "potassium", "temperature", "humidity", "rainfall"},
			predict:  PredictCrop,
		},
		&typedModel[AirQualityInput]{
			key: ModuleAirQuality, name: "Air quality prediction", category: CategoryEnvironment,
			required: []string{"pm25", "pm10", "no2", "so2", "co"},
			predict:  PredictAirQuality,
		},
		&typedModel[PlantDiseaseInput]{
			key: ModulePlantDisease, name: "Plant disease detection", category: CategoryImage,
			required: []string{"symptoms"},
			predict:  PredictPlantDisease,
		},
	}
}

// Models returns the registered models in registration order.
func (r *Registry) Models() []Model {
	out := make([]Model, len(r.models))
	copy(out, r.models)
	return out
}

// Get looks up the model registered under key.
func (r *Registry) Get(key Module) (Model, error) {
	m, ok := r.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, key)
	}
	return m, nil
}

// Predict runs the model registered under key against a JSON input record.
func (r *Registry) Predict(key Module, raw json.RawMessage) (Result, error) {
	m, err := r.Get(key)
	if err != nil {
		return Result{}, err
	}
	return m.Predict(raw)
}
