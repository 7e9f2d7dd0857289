package controllers

import (
	"context"
	"time"

	"github.com/zulfuqarov/CarsTrack/database"
	"github.com/zulfuqarov/CarsTrack/middlewares"
	"github.com/zulfuqarov/CarsTrack/models"
	"github.com/zulfuqarov/CarsTrack/storage"
	"github.com/zulfuqarov/CarsTrack/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type carCreateInput struct {
	Year            int                  `json:"year" validate:"required"`
	Make            string               `json:"make" validate:"required"`
	Model           string               `json:"model" validate:"required"`
	Vin             string               `json:"vin" validate:"required"`
	ContainerNumber string               `json:"containerNumber"`
	PortOfLoading   string               `json:"portOfLoading"`
	LoadingDate     *time.Time           `json:"loadingDate"`
	OpeningDate     *time.Time           `json:"openingDate"`
	SaleDate        *time.Time           `json:"saleDate"`
	TrackingLinks   models.TrackingLinks `json:"trackingLinks"`
	Status          string               `json:"status" validate:"omitempty,oneof=pending in_transit arrived sold"`
}

type customerCreateInput struct {
	Name    string          `json:"name" validate:"required,max=50"`
	Email   string          `json:"email" validate:"required,email"`
	Phone   string          `json:"phone" validate:"required,max=20"`
	Address string          `json:"address" validate:"required"`
	Car     carCreateInput  `json:"car"`
	Images  models.ImageSet `json:"images"`
}

func CreateCustomer(c *fiber.Ctx) error {
	var input customerCreateInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	db := database.RequestDB(c)

	var count int64
	db.Model(&models.Customer{}).Where("email = ?", input.Email).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "customer already exists")
	}

	db.Model(&models.Customer{}).Where("car_vin = ?", input.Car.Vin).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "VIN already exists")
	}

	code, err := utils.GenerateTrackingCode(input.Name, input.Car.Make, func(code string) (bool, error) {
		var n int64
		if err := db.Model(&models.Customer{}).Where("customer_id = ?", code).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	})
	if err != nil {
		return err
	}

	status := input.Car.Status
	if status == "" {
		status = models.StatusPending
	}

	customer := models.Customer{
		CustomerId: code,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		Car: models.CarInfo{
			Year:            input.Car.Year,
			Make:            input.Car.Make,
			Model:           input.Car.Model,
			Vin:             input.Car.Vin,
			ContainerNumber: input.Car.ContainerNumber,
			PortOfLoading:   input.Car.PortOfLoading,
			LoadingDate:     input.Car.LoadingDate,
			OpeningDate:     input.Car.OpeningDate,
			SaleDate:        input.Car.SaleDate,
			TrackingLinks:   input.Car.TrackingLinks,
			Status:          status,
		},
		Images: datatypes.NewJSONType(input.Images),
	}

	if err := db.Create(&customer).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create customer")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

func GetCustomers(c *fiber.Ctx) error {
	var customers []models.Customer
	if err := database.RequestDB(c).Order("created_at DESC").Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
	})
}

// loadCustomer resolves the :id path param to a record. Malformed ids are a
// 404 like unknown ones, never a 500.
func loadCustomer(c *fiber.Ctx, db *gorm.DB) (*models.Customer, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "customer not found")
	}

	var customer models.Customer
	if err := db.Where("id = ?", id).First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(c *fiber.Ctx) error {
	customer, err := loadCustomer(c, database.RequestDB(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

// GetCustomerByCode is the public app's lookup: tracking code in, record out.
func GetCustomerByCode(c *fiber.Ctx) error {
	var customer models.Customer
	err := database.RequestDB(c).Where("customer_id = ?", c.Params("code")).First(&customer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

type carUpdateInput struct {
	Year            *int                  `json:"year"`
	Make            *string               `json:"make"`
	Model           *string               `json:"model"`
	Vin             *string               `json:"vin"`
	ContainerNumber *string               `json:"containerNumber"`
	PortOfLoading   *string               `json:"portOfLoading"`
	LoadingDate     *time.Time            `json:"loadingDate"`
	OpeningDate     *time.Time            `json:"openingDate"`
	SaleDate        *time.Time            `json:"saleDate"`
	TrackingLinks   *models.TrackingLinks `json:"trackingLinks"`
	Status          *string               `json:"status" validate:"omitempty,oneof=pending in_transit arrived sold"`
}

type customerUpdateInput struct {
	Name    *string          `json:"name" validate:"omitempty,max=50"`
	Email   *string          `json:"email" validate:"omitempty,email"`
	Phone   *string          `json:"phone" validate:"omitempty,max=20"`
	Address *string          `json:"address"`
	Car     *carUpdateInput  `json:"car"`
	Images  *models.ImageSet `json:"images"`
}

func (input *carUpdateInput) apply(car *models.CarInfo) {
	if input.Year != nil {
		car.Year = *input.Year
	}
	if input.Make != nil {
		car.Make = *input.Make
	}
	if input.Model != nil {
		car.Model = *input.Model
	}
	if input.Vin != nil {
		car.Vin = *input.Vin
	}
	if input.ContainerNumber != nil {
		car.ContainerNumber = *input.ContainerNumber
	}
	if input.PortOfLoading != nil {
		car.PortOfLoading = *input.PortOfLoading
	}
	if input.LoadingDate != nil {
		car.LoadingDate = input.LoadingDate
	}
	if input.OpeningDate != nil {
		car.OpeningDate = input.OpeningDate
	}
	if input.SaleDate != nil {
		car.SaleDate = input.SaleDate
	}
	if input.TrackingLinks != nil {
		car.TrackingLinks = *input.TrackingLinks
	}
	if input.Status != nil {
		car.Status = *input.Status
	}
}

// UpdateCustomer shallow-merges the fields present in the request. A present
// car object merges field by field; a present images object replaces the
// whole set (the admin app always submits the merged lists).
func UpdateCustomer(c *fiber.Ctx) error {
	var input customerUpdateInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	db := database.RequestDB(c)

	customer, err := loadCustomer(c, db)
	if err != nil {
		return err
	}

	if input.Email != nil && *input.Email != customer.Email {
		var count int64
		db.Model(&models.Customer{}).Where("email = ?", *input.Email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "email already exists")
		}
		customer.Email = *input.Email
	}
	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.Car != nil {
		if input.Car.Vin != nil && *input.Car.Vin != customer.Car.Vin {
			var count int64
			db.Model(&models.Customer{}).Where("car_vin = ?", *input.Car.Vin).Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "VIN already exists")
			}
		}
		input.Car.apply(&customer.Car)
	}
	if input.Images != nil {
		customer.Images = datatypes.NewJSONType(*input.Images)
	}

	if err := db.Save(customer).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update customer")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

// DeleteCustomer removes the record and, best effort, its stored image
// files. Cleanup failures are logged and do not fail the delete.
func DeleteCustomer(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		db := database.RequestDB(c)

		customer, err := loadCustomer(c, db)
		if err != nil {
			return err
		}

		if err := db.Delete(customer).Error; err != nil {
			return err
		}

		for _, url := range customer.Images.Data().All() {
			if err := store.Remove(context.Background(), url); err != nil {
				zap.L().Warn("could not remove stored image",
					zap.String("url", url),
					zap.String("customer", customer.CustomerId),
					zap.Error(err))
			}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "customer removed",
		})
	}
}
