package database

import (
    "context"
    "database/sql"
    "fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
    `CREATE TABLE IF NOT EXISTS airlines (
        name VARCHAR(50) NOT NULL PRIMARY KEY
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS airports (
        code    CHAR(3)      NOT NULL PRIMARY KEY,
        city    VARCHAR(100) NOT NULL,
        country VARCHAR(100) NOT NULL,
        INDEX idx_airports_city (city)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS customers (
        email               VARCHAR(255) NOT NULL PRIMARY KEY,
        password_hash       VARCHAR(255) NOT NULL,
        name                VARCHAR(120) NOT NULL,
        phone_number        VARCHAR(30)  NOT NULL,
        building_number     VARCHAR(30)  NOT NULL DEFAULT '',
        street              VARCHAR(120) NOT NULL DEFAULT '',
        city                VARCHAR(100) NOT NULL DEFAULT '',
        state               VARCHAR(100) NOT NULL DEFAULT '',
        passport_number     VARCHAR(30)  NOT NULL,
        passport_country    VARCHAR(100) NOT NULL,
        passport_expiration DATE         NOT NULL,
        date_of_birth       DATE         NOT NULL,
        created_at          DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS airline_staff (
        username      VARCHAR(50)  NOT NULL PRIMARY KEY,
        airline_name  VARCHAR(50)  NOT NULL,
        email         VARCHAR(255) NOT NULL,
        password_hash VARCHAR(255) NOT NULL,
        first_name    VARCHAR(60)  NOT NULL,
        last_name     VARCHAR(60)  NOT NULL,
        date_of_birth DATE         NOT NULL,
        created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT fk_staff_airline FOREIGN KEY (airline_name) REFERENCES airlines(name)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS staff_phone_numbers (
        username     VARCHAR(50) NOT NULL,
        phone_number VARCHAR(30) NOT NULL,
        PRIMARY KEY (username, phone_number),
        CONSTRAINT fk_phone_staff FOREIGN KEY (username) REFERENCES airline_staff(username) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS airplanes (
        airline_name VARCHAR(50)  NOT NULL,
        id           VARCHAR(20)  NOT NULL,
        num_seats    INT UNSIGNED NOT NULL,
        manufacturer VARCHAR(100) NOT NULL DEFAULT '',
        age          INT UNSIGNED NOT NULL DEFAULT 0,
        created_at   DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (airline_name, id),
        CONSTRAINT fk_airplane_airline FOREIGN KEY (airline_name) REFERENCES airlines(name)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS flights (
        airline_name     VARCHAR(50)   NOT NULL,
        flight_number    VARCHAR(20)   NOT NULL,
        dep_datetime     DATETIME      NOT NULL,
        arr_datetime     DATETIME      NOT NULL,
        base_price       DECIMAL(10,2) NOT NULL DEFAULT 0,
        status           VARCHAR(10)   NOT NULL DEFAULT 'on-time',
        dep_airport_code CHAR(3)       NOT NULL,
        arr_airport_code CHAR(3)       NOT NULL,
        airplane_id      VARCHAR(20)   NOT NULL,
        created_at       DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (airline_name, flight_number, dep_datetime),
        INDEX idx_flights_dep (dep_datetime),
        CONSTRAINT fk_flight_airplane FOREIGN KEY (airline_name, airplane_id) REFERENCES airplanes(airline_name, id),
        CONSTRAINT fk_flight_dep FOREIGN KEY (dep_airport_code) REFERENCES airports(code),
        CONSTRAINT fk_flight_arr FOREIGN KEY (arr_airport_code) REFERENCES airports(code)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS tickets (
        ticket_id       CHAR(36)     NOT NULL PRIMARY KEY,
        customer_email  VARCHAR(255) NOT NULL,
        airline_name    VARCHAR(50)  NOT NULL,
        flight_number   VARCHAR(20)  NOT NULL,
        dep_datetime    DATETIME     NOT NULL,
        purchased_at    DATETIME     NOT NULL,
        card_type       VARCHAR(10)  NOT NULL,
        card_number     VARCHAR(32)  NOT NULL,
        name_on_card    VARCHAR(120) NOT NULL,
        card_expiration CHAR(5)      NOT NULL,
        INDEX idx_tickets_flight (airline_name, flight_number, dep_datetime),
        INDEX idx_tickets_customer (customer_email),
        CONSTRAINT fk_ticket_flight FOREIGN KEY (airline_name, flight_number, dep_datetime)
            REFERENCES flights(airline_name, flight_number, dep_datetime),
        CONSTRAINT fk_ticket_customer FOREIGN KEY (customer_email) REFERENCES customers(email)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS reviews (
        id             BIGINT UNSIGNED  NOT NULL AUTO_INCREMENT PRIMARY KEY,
        customer_email VARCHAR(255)     NOT NULL,
        airline_name   VARCHAR(50)      NOT NULL,
        flight_number  VARCHAR(20)      NOT NULL,
        dep_datetime   DATETIME         NOT NULL,
        rating         TINYINT UNSIGNED NOT NULL,
        comment        TEXT             NULL,
        created_at     DATETIME         NOT NULL DEFAULT CURRENT_TIMESTAMP,
        INDEX idx_reviews_flight (airline_name, flight_number, dep_datetime),
        INDEX idx_reviews_customer (customer_email),
        CONSTRAINT fk_review_flight FOREIGN KEY (airline_name, flight_number, dep_datetime)
            REFERENCES flights(airline_name, flight_number, dep_datetime)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS refresh_tokens (
        id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        principal_role VARCHAR(10)     NOT NULL,
        principal_id   VARCHAR(255)    NOT NULL,
        token_hash     CHAR(64)        NOT NULL,
        expires_at     DATETIME        NOT NULL,
        revoked_at     DATETIME        NULL,
        created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        UNIQUE KEY uq_refresh_hash (token_hash),
        INDEX idx_refresh_principal (principal_role, principal_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db Execer) error {
    for i, stmt := range schema {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("migrate statement %d: %w", i+1, err)
        }
    }
    return nil
}

// Execer is satisfied by *sql.DB, *sqlx.DB and *sql.Tx.
type Execer interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
