package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/env"
	"github.com/shopdeckhq/shopdeck/internal/pkg/mail"
	"github.com/shopdeckhq/shopdeck/internal/pkg/session"
	"github.com/shopdeckhq/shopdeck/internal/pkg/usercontext"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("auth/login", fiber.Map{
			"Title": "Sign in",
			"Flash": flash.Get(c),
		}, "layouts/main")
	}

	fm := fiber.Map{
		"type": "error",
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByEmail(c.FormValue("email"))
	if err != nil {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !models.CheckPasswordHash(c.FormValue("password"), user.Password) {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.IsActive() {
		fm["message"] = "Please activate your account first"

		return flash.WithError(c, fm).Redirect("/login")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())

	err = sess.Save()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = userRepo.Update(user)

	fm = fiber.Map{
		"type":    "success",
		"message": "Welcome back!",
	}

	return flash.WithSuccess(c, fm).Redirect("/shops")
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	err = sess.Destroy()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Bye bye! See you soon.",
	}

	c.Locals(usercontext.KeyFromProtected, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("auth/register", fiber.Map{
			"Title": "Create account",
			"Flash": flash.Get(c),
		}, "layouts/main")
	}

	user, err := models.CreateUser(c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	if err := user.GenerateActivationToken(); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	if err := userRepo.Create(user); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	// Activation mail is best effort; the token can be re-sent by support.
	go func() {
		link := fmt.Sprintf("%s/activate?token=%s", env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080"), user.ActivationToken)
		body := fmt.Sprintf("Welcome to ShopDeck!\n\nPlease confirm your account:\n%s\n", link)
		if err := mail.SendMail(user.Email, "Activate your ShopDeck account", body); err != nil {
			fmt.Printf("activation mail to %s failed: %v\n", user.Email, err)
		}
	}()

	fm := fiber.Map{
		"type":    "success",
		"message": "Account created! Check your inbox for the activation link.",
	}

	return flash.WithSuccess(c, fm).Redirect("/login")
}

// HandleUserActivate flips an inactive account to active when the token matches.
func HandleUserActivate(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Missing activation token",
		}).Redirect("/login")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByActivationToken(token)
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Invalid or expired activation token",
		}).Redirect("/login")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := userRepo.Update(user); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}).Redirect("/login")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Account activated, you can sign in now.",
	}).Redirect("/login")
}

// HandleAccountElevate re-verifies the password and opens a step-up window
// for shop-administrative writes.
func HandleAccountElevate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthenticated",
			"message": "sign in first",
		})
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthenticated",
			"message": "unknown user",
		})
	}

	if !user.CheckPassword(c.FormValue("password")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "elevation_required",
			"message": "password verification failed",
		})
	}

	minutes, err := strconv.Atoi(env.GetEnv("ELEVATION_WINDOW_MINUTES", "15"))
	if err != nil || minutes < 1 {
		minutes = 15
	}
	until := time.Now().Add(time.Duration(minutes) * time.Minute)

	if err := session.SetSessionValue(c, usercontext.KeyElevatedUntil, until.UTC().Format(time.RFC3339)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": fmt.Sprintf("could not persist elevation: %s", err),
		})
	}

	return c.JSON(fiber.Map{
		"ok":             true,
		"elevated_until": until.UTC().Format(time.RFC3339),
	})
}

// HandleAPIKeyRotate issues a fresh API key and stores only its hash.
// The raw key is shown exactly once in the response.
func HandleAPIKeyRotate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthenticated",
			"message": "sign in first",
		})
	}

	raw, err := models.NewAPIKey()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not generate key",
		})
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthenticated",
			"message": "unknown user",
		})
	}

	user.APIKeyHash = models.HashAPIKey(raw)
	if err := userRepo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not store key",
		})
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"api_key": raw,
	})
}
