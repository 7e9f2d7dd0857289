package controllers

import (
	"net/mail"

	"github.com/zulfuqarov/CarsTrack/database"
	"github.com/zulfuqarov/CarsTrack/middlewares"
	"github.com/zulfuqarov/CarsTrack/models"
	"github.com/zulfuqarov/CarsTrack/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type registerInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func Register(c *fiber.Ctx) error {
	var input registerInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	db := database.RequestDB(c)

	var count int64
	db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	// Back-office accounts; every registered user administers records.
	user := models.User{
		Name:  input.Name,
		Email: input.Email,
		Role:  models.RoleAdmin,
	}
	user.SetPassword(input.Password)

	if err := db.Create(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create user")
	}

	token, err := middlewares.GenerateJWT(user.Id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if _, err := mail.ParseAddress(input.Email); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
	}

	var user models.User
	if err := database.RequestDB(c).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	if err := user.ComparePassword(input.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := middlewares.GenerateJWT(user.Id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// Me resolves the bearer token to the account record (password excluded).
func Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var user models.User
	if err := database.RequestDB(c).Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}
