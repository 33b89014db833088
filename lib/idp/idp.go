package idp

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
	"github.com/sethvargo/go-password/password"

	"tenantops/lib/tenant"
)

// Client resolves user pool details for tenant provisioning.
type Client struct {
	api cognitoidentityprovideriface.CognitoIdentityProviderAPI
}

func New(api cognitoidentityprovideriface.CognitoIdentityProviderAPI) *Client {
	return &Client{api: api}
}

// ResolveAppClient returns the pool's hosted domain and the id and
// secret of its first app client. A pool without a domain or without
// clients cannot serve a tenant.
func (c *Client) ResolveAppClient(ctx context.Context, userPoolID string) (string, string, string, error) {
	pool, err := c.api.DescribeUserPoolWithContext(ctx, &cognitoidentityprovider.DescribeUserPoolInput{
		UserPoolId: aws.String(userPoolID),
	})
	if err != nil {
		return "", "", "", fmt.Errorf("%w: describe user pool: %s", tenant.ErrExternalService, err.Error())
	}
	if pool.UserPool == nil || aws.StringValue(pool.UserPool.Domain) == "" {
		return "", "", "", fmt.Errorf("%w: user pool %s has no domain", tenant.ErrNotFound, userPoolID)
	}
	domain := aws.StringValue(pool.UserPool.Domain)

	clients, err := c.api.ListUserPoolClientsWithContext(ctx, &cognitoidentityprovider.ListUserPoolClientsInput{
		UserPoolId: aws.String(userPoolID),
		MaxResults: aws.Int64(1),
	})
	if err != nil {
		return "", "", "", fmt.Errorf("%w: list user pool clients: %s", tenant.ErrExternalService, err.Error())
	}
	if len(clients.UserPoolClients) == 0 {
		return "", "", "", fmt.Errorf("%w: user pool %s has no app clients", tenant.ErrNotFound, userPoolID)
	}
	clientID := aws.StringValue(clients.UserPoolClients[0].ClientId)
	if clientID == "" {
		return "", "", "", fmt.Errorf("%w: user pool %s app client has no id", tenant.ErrNotFound, userPoolID)
	}

	described, err := c.api.DescribeUserPoolClientWithContext(ctx, &cognitoidentityprovider.DescribeUserPoolClientInput{
		UserPoolId: aws.String(userPoolID),
		ClientId:   aws.String(clientID),
	})
	if err != nil {
		return "", "", "", fmt.Errorf("%w: describe user pool client: %s", tenant.ErrExternalService, err.Error())
	}
	if described.UserPoolClient == nil || aws.StringValue(described.UserPoolClient.ClientSecret) == "" {
		return "", "", "", fmt.Errorf("%w: user pool %s app client has no secret", tenant.ErrNotFound, userPoolID)
	}

	return domain, clientID, aws.StringValue(described.UserPoolClient.ClientSecret), nil
}

// CreateAdminUser seeds the tenant's first user with a generated
// temporary password. Cognito emails the invitation itself.
func (c *Client) CreateAdminUser(ctx context.Context, userPoolID, username, email string) error {
	temp, err := password.Generate(16, 4, 2, false, false)
	if err != nil {
		return fmt.Errorf("generating temporary password: %w", err)
	}
	_, err = c.api.AdminCreateUserWithContext(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:        aws.String(userPoolID),
		Username:          aws.String(username),
		TemporaryPassword: aws.String(temp),
		DesiredDeliveryMediums: []*string{
			aws.String(cognitoidentityprovider.DeliveryMediumTypeEmail),
		},
		UserAttributes: []*cognitoidentityprovider.AttributeType{
			{
				Name:  aws.String("email"),
				Value: aws.String(email),
			},
			{
				Name:  aws.String("email_verified"),
				Value: aws.String("true"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create admin user: %s", tenant.ErrExternalService, err.Error())
	}
	log.Printf("created initial admin user %s", username)
	return nil
}
